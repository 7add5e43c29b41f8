package source

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps binding names to compact ids. Names are NFC-normalised first,
// so composed and decomposed spellings of the same identifier share an id.
type Interner struct {
	byID  []string            // индекс -> строка (byID[0] = "" для NoStringID)
	index map[string]StringID // строка -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Normalize returns the canonical spelling used for identifier comparison.
func Normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// Intern вставляет строку и возвращает её ID.
// Если строка уже есть, возвращает существующий ID.
func (i *Interner) Intern(s string) StringID {
	s = Normalize(s)
	if id, ok := i.index[s]; ok {
		return id
	}
	cpy := string([]byte(s))
	id := StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Find returns the id of an already interned string without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	id, ok := i.index[Normalize(s)]
	return id, ok
}

// Lookup возвращает строку по ID.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if !i.Has(id) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Has(id StringID) bool {
	return int(id) < len(i.byID)
}

// Len includes NoStringID, so it is never less than 1.
func (i *Interner) Len() int {
	return len(i.byID)
}

func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
