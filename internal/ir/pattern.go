package ir

import (
	"strings"

	"ownck/internal/source"
)

// PatternKind enumerates destructuring pattern forms.
type PatternKind uint8

const (
	PatBind PatternKind = iota
	PatWild
	PatRest
	PatTuple
	PatArray
	PatStruct
)

func (k PatternKind) String() string {
	switch k {
	case PatBind:
		return "bind"
	case PatWild:
		return "wild"
	case PatRest:
		return "rest"
	case PatTuple:
		return "tuple"
	case PatArray:
		return "array"
	case PatStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// Pattern is a destructuring pattern. Field names the struct member a
// sub-pattern matches and is empty for positional sub-patterns.
type Pattern struct {
	Kind  PatternKind `msgpack:"k"`
	Name  string      `msgpack:"name,omitempty"`
	Field string      `msgpack:"field,omitempty"`
	Elems []Pattern   `msgpack:"elems,omitempty"`
}

func Bind(name string) Pattern { return Pattern{Kind: PatBind, Name: source.Normalize(name)} }

func Wild() Pattern { return Pattern{Kind: PatWild} }

func Rest() Pattern { return Pattern{Kind: PatRest} }

func TuplePat(elems ...Pattern) Pattern { return Pattern{Kind: PatTuple, Elems: elems} }

func ArrayPat(elems ...Pattern) Pattern { return Pattern{Kind: PatArray, Elems: elems} }

func StructPat(elems ...Pattern) Pattern { return Pattern{Kind: PatStruct, Elems: elems} }

// On attaches a struct member name to a sub-pattern.
func (p Pattern) On(field string) Pattern {
	p.Field = field
	return p
}

// Names lists bound names in left-to-right order.
func (p Pattern) Names() []string {
	var out []string
	p.collect(&out)
	return out
}

func (p Pattern) collect(out *[]string) {
	switch p.Kind {
	case PatBind:
		*out = append(*out, p.Name)
	case PatTuple, PatArray, PatStruct:
		for _, e := range p.Elems {
			e.collect(out)
		}
	}
}

func (p Pattern) String() string {
	var b strings.Builder
	p.write(&b)
	return b.String()
}

func (p Pattern) write(b *strings.Builder) {
	if p.Field != "" {
		b.WriteString(p.Field)
		b.WriteString(": ")
	}
	switch p.Kind {
	case PatBind:
		b.WriteString(p.Name)
	case PatWild:
		b.WriteByte('_')
	case PatRest:
		b.WriteString("..")
	case PatTuple, PatArray, PatStruct:
		open, closing := "(", ")"
		if p.Kind == PatArray {
			open, closing = "[", "]"
		} else if p.Kind == PatStruct {
			open, closing = "{ ", " }"
		}
		b.WriteString(open)
		for i, e := range p.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteString(closing)
	}
}
