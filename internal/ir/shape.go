package ir

import (
	"strconv"
	"strings"
)

// ShapeKind classifies the composite structure of a value.
type ShapeKind uint8

const (
	// ShapeUnknown means the front-end did not report a shape; destructuring
	// against it is assumed to match.
	ShapeUnknown ShapeKind = iota
	ShapeScalar
	ShapeTuple
	ShapeStruct
	ShapeArray
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeUnknown:
		return "unknown"
	case ShapeScalar:
		return "scalar"
	case ShapeTuple:
		return "tuple"
	case ShapeStruct:
		return "struct"
	case ShapeArray:
		return "array"
	default:
		return "invalid"
	}
}

// Shape describes what a destructuring pattern may take apart.
type Shape struct {
	Kind   ShapeKind `msgpack:"k"`
	Fields []Field   `msgpack:"f,omitempty"` // struct and tuple members in declaration order
	Len    int       `msgpack:"n,omitempty"` // array length
	Elem   *Shape    `msgpack:"e,omitempty"` // array element, nil means unknown
}

// Field is a named member of a struct or a positional member of a tuple.
type Field struct {
	Name  string `msgpack:"name"`
	Shape Shape  `msgpack:"shape"`
}

func Unknown() Shape { return Shape{} }

func Scalar() Shape { return Shape{Kind: ShapeScalar} }

// Tuple builds a tuple shape; members are addressed as "0", "1", ...
func Tuple(elems ...Shape) Shape {
	fields := make([]Field, len(elems))
	for i, e := range elems {
		fields[i] = Field{Name: strconv.Itoa(i), Shape: e}
	}
	return Shape{Kind: ShapeTuple, Fields: fields}
}

func Struct(fields ...Field) Shape {
	return Shape{Kind: ShapeStruct, Fields: fields}
}

func F(name string, shape Shape) Field {
	return Field{Name: name, Shape: shape}
}

func Array(n int, elem Shape) Shape {
	e := elem
	return Shape{Kind: ShapeArray, Len: n, Elem: &e}
}

// IsComposite reports whether the shape has addressable members.
func (s Shape) IsComposite() bool {
	return s.Kind == ShapeTuple || s.Kind == ShapeStruct || s.Kind == ShapeArray
}

// Arity returns the number of direct members.
func (s Shape) Arity() int {
	switch s.Kind {
	case ShapeTuple, ShapeStruct:
		return len(s.Fields)
	case ShapeArray:
		return s.Len
	}
	return 0
}

// At returns the i-th positional member of a tuple or array without
// materialising the member list.
func (s Shape) At(i int) (Shape, bool) {
	switch s.Kind {
	case ShapeTuple:
		if i < 0 || i >= len(s.Fields) {
			return Shape{}, false
		}
		return s.Fields[i].Shape, true
	case ShapeArray:
		if i < 0 || i >= s.Len {
			return Shape{}, false
		}
		if s.Elem == nil {
			return Unknown(), true
		}
		return *s.Elem, true
	case ShapeUnknown:
		return Unknown(), true
	}
	return Shape{}, false
}

// Member resolves a direct member selector.
func (s Shape) Member(sel string) (Shape, bool) {
	switch s.Kind {
	case ShapeTuple:
		// tuple members are named by position unless decoded otherwise
		if idx, err := strconv.Atoi(sel); err == nil && idx >= 0 && idx < len(s.Fields) && s.Fields[idx].Name == sel {
			return s.Fields[idx].Shape, true
		}
		return s.field(sel)
	case ShapeStruct:
		return s.field(sel)
	case ShapeArray:
		idx, err := strconv.Atoi(sel)
		if err != nil {
			return Shape{}, false
		}
		return s.At(idx)
	case ShapeUnknown:
		// nothing is known, so any selector is accepted
		return Unknown(), true
	}
	return Shape{}, false
}

func (s Shape) field(sel string) (Shape, bool) {
	for _, f := range s.Fields {
		if f.Name == sel {
			return f.Shape, true
		}
	}
	return Shape{}, false
}

// Resolve walks a selector chain.
func (s Shape) Resolve(fields []string) (Shape, bool) {
	cur := s
	for _, sel := range fields {
		next, ok := cur.Member(sel)
		if !ok {
			return Shape{}, false
		}
		cur = next
	}
	return cur, true
}

func (s Shape) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Shape) write(b *strings.Builder) {
	switch s.Kind {
	case ShapeTuple:
		b.WriteByte('(')
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			f.Shape.write(b)
		}
		b.WriteByte(')')
	case ShapeStruct:
		b.WriteString("{")
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(f.Name)
			b.WriteString(": ")
			f.Shape.write(b)
		}
		b.WriteString(" }")
	case ShapeArray:
		b.WriteByte('[')
		if s.Elem != nil {
			s.Elem.write(b)
		} else {
			b.WriteString("_")
		}
		b.WriteString("; ")
		b.WriteString(strconv.Itoa(s.Len))
		b.WriteByte(']')
	default:
		b.WriteString(s.Kind.String())
	}
}
