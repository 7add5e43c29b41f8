package source

import "testing"

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	// NoStringID зарезервирован под пустую строку
	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Errorf("NoStringID must map to empty string, got %q, ok=%v", s, ok)
	}

	id1 := interner.Intern("hello")
	if id1 == NoStringID {
		t.Fatal("Intern returned NoStringID for non-empty string")
	}
	if id2 := interner.Intern("hello"); id1 != id2 {
		t.Errorf("same string interned twice: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "hello" {
		t.Errorf("Lookup returned %q", s)
	}
	if id3 := interner.Intern("world"); id3 == id1 {
		t.Error("different strings must get different ids")
	}
	if interner.Len() != 3 {
		t.Errorf("Len = %d, want 3", interner.Len())
	}
}

func TestInternerNormalizesNames(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("caf\u00e9")
	decomposed := interner.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("composed and decomposed spellings must share an id: %d != %d", composed, decomposed)
	}
	if id, ok := interner.Find("cafe\u0301"); !ok || id != composed {
		t.Fatalf("Find = %d, %v", id, ok)
	}
	if _, ok := interner.Find("missing"); ok {
		t.Fatal("Find must not insert")
	}
}

func TestInternerLookupInvalid(t *testing.T) {
	interner := NewInterner()
	if _, ok := interner.Lookup(StringID(42)); ok {
		t.Fatal("expected lookup failure")
	}
	defer func() {
		if recover() == nil {
			t.Fatal("MustLookup should panic on invalid id")
		}
	}()
	interner.MustLookup(StringID(42))
}
