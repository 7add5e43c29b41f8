package borrowck

import (
	"testing"

	"ownck/internal/ir"
)

func check(t *testing.T, b *ir.Builder, opts Options) (*Checker, []Violation) {
	t.Helper()
	c := New(opts)
	c.RecordEvents(true)
	c.Check(b.Program())
	return c, c.Drain()
}

func checkDefault(t *testing.T, b *ir.Builder) []Violation {
	t.Helper()
	_, vs := check(t, b, DefaultOptions())
	return vs
}

func kinds(vs []Violation) []ViolationKind {
	out := make([]ViolationKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func hasKind(vs []Violation, kind ViolationKind) bool {
	for _, v := range vs {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

func expectKinds(t *testing.T, vs []Violation, want ...ViolationKind) {
	t.Helper()
	got := kinds(vs)
	if len(got) != len(want) {
		t.Fatalf("expected violations %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected violations %v, got %v", want, got)
		}
	}
}

func expectClean(t *testing.T, vs []Violation) {
	t.Helper()
	if len(vs) != 0 {
		t.Fatalf("expected no violations, got %v", kinds(vs))
	}
}

func scalar() *ir.Expr { return ir.Literal(ir.Scalar()) }

func point() ir.Shape {
	return ir.Struct(ir.F("x", ir.Scalar()), ir.F("y", ir.Scalar()))
}
