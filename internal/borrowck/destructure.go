package borrowck

import (
	"errors"
	"fmt"
	"strings"

	"ownck/internal/ir"
	"ownck/internal/source"
)

type slot struct {
	name  string
	shape ir.Shape
}

// declarePattern handles `let <pattern> = value`. The value is evaluated
// first, so destructuring a binding moves the whole of it; every named slot
// then becomes an independent binding.
func (c *Checker) declarePattern(pat *ir.Pattern, mutable bool, value *ir.Expr, at source.Loc) {
	init := c.eval(value, at)
	if pat == nil {
		return
	}
	for _, s := range c.resolvePattern(*pat, init.shape, value, at) {
		c.declare(s.name, mutable, initResult{shape: s.shape}, at)
	}
}

// assignPattern handles `<pattern> = value` over existing bindings.
func (c *Checker) assignPattern(pat *ir.Pattern, value *ir.Expr, at source.Loc) {
	init := c.eval(value, at)
	if pat == nil {
		return
	}
	for _, s := range c.resolvePattern(*pat, init.shape, value, at) {
		b := c.Lookup(s.name)
		if b == nil {
			c.violate(Violation{Kind: UnknownBinding, Binding: s.name, Site: at})
			continue
		}
		blocked := NoViolation
		if moved, ok := b.movedOverlap(nil); ok {
			blocked = UseOfMovedValue
			c.violate(Violation{Kind: UseOfMovedValue, Binding: b.Name, Site: at, Related: moved,
				Detail: "destructuring assignment requires a live target"})
		} else if !b.Mutable {
			blocked = ImmutableBinding
			c.violate(Violation{Kind: ImmutableBinding, Binding: b.Name, Site: at, Related: b.Decl})
		} else if issue := c.borrows.MutationAllowed(b.ID); issue.Blocked() {
			blocked = CannotMutateWhileBorrowed
			c.violate(Violation{Kind: CannotMutateWhileBorrowed, Binding: b.Name, Site: at, Related: c.borrowSite(issue.Borrow)})
		}
		shape := s.shape
		if shape.Kind == ir.ShapeUnknown {
			shape = b.Shape
		}
		b.reinit(shape)
		c.event(Event{Kind: EvWrite, Binding: b.ID, Name: b.Name, At: at, Scope: c.currentScope(), Blocked: blocked})
	}
}

// resolvePattern matches pat against shape. On mismatch it reports once and
// falls back to binding every named slot with an unknown shape, so later
// statements do not cascade into UnknownBinding.
func (c *Checker) resolvePattern(pat ir.Pattern, shape ir.Shape, value *ir.Expr, at source.Loc) []slot {
	slots, err := matchPattern(pat, shape, nil)
	if err == nil {
		return slots
	}
	v := Violation{Kind: ShapeMismatch, Binding: "<literal>", Site: at, Detail: err.Error()}
	if value != nil && value.Kind != ir.ExprLiteral {
		v.Binding = value.Path.String()
		if src := c.Lookup(value.Path.Name); src != nil {
			v.Related = src.Decl
		}
	}
	c.violate(v)

	names := pat.Names()
	slots = make([]slot, len(names))
	for i, n := range names {
		slots[i] = slot{name: n, shape: ir.Unknown()}
	}
	return slots
}

func matchPattern(p ir.Pattern, s ir.Shape, out []slot) ([]slot, error) {
	switch p.Kind {
	case ir.PatBind:
		return append(out, slot{name: p.Name, shape: s}), nil
	case ir.PatWild, ir.PatRest:
		return out, nil
	case ir.PatTuple:
		return matchPositional(p, s, ir.ShapeTuple, out)
	case ir.PatArray:
		return matchPositional(p, s, ir.ShapeArray, out)
	case ir.PatStruct:
		return matchStruct(p, s, out)
	}
	return out, fmt.Errorf("invalid pattern kind %d", p.Kind)
}

// matchPositional matches tuple and array patterns. Elements after a rest
// marker bind to the tail of the value.
func matchPositional(p ir.Pattern, s ir.Shape, want ir.ShapeKind, out []slot) ([]slot, error) {
	rest := -1
	for i, e := range p.Elems {
		if e.Kind != ir.PatRest {
			continue
		}
		if rest >= 0 {
			return out, errors.New("`..` can be used at most once per pattern")
		}
		rest = i
	}
	var err error
	if s.Kind == ir.ShapeUnknown {
		for _, e := range p.Elems {
			if out, err = matchPattern(e, ir.Unknown(), out); err != nil {
				return out, err
			}
		}
		return out, nil
	}
	if s.Kind != want {
		return out, fmt.Errorf("%s pattern cannot match %s value %s", p.Kind, s.Kind, s)
	}

	fixed := len(p.Elems)
	if rest >= 0 {
		fixed--
	}
	n := s.Arity()
	if rest < 0 && fixed != n {
		return out, fmt.Errorf("%s pattern has %d elements, but the value has %d", p.Kind, fixed, n)
	}
	if rest >= 0 && fixed > n {
		return out, fmt.Errorf("%s pattern needs at least %d elements, but the value has %d", p.Kind, fixed, n)
	}

	for i, e := range p.Elems {
		if i == rest {
			continue
		}
		idx := i
		if rest >= 0 && i > rest {
			idx = n - (len(p.Elems) - i)
		}
		member, _ := s.At(idx)
		if out, err = matchPattern(e, member, out); err != nil {
			return out, err
		}
	}
	return out, nil
}

func matchStruct(p ir.Pattern, s ir.Shape, out []slot) ([]slot, error) {
	if s.Kind != ir.ShapeUnknown && s.Kind != ir.ShapeStruct {
		return out, fmt.Errorf("struct pattern cannot match %s value %s", s.Kind, s)
	}
	seen := make(map[string]struct{}, len(p.Elems))
	hasRest := false
	var err error
	for _, e := range p.Elems {
		if e.Kind == ir.PatRest {
			if hasRest {
				return out, errors.New("`..` can be used at most once per pattern")
			}
			hasRest = true
			continue
		}
		field := e.Field
		if field == "" && e.Kind == ir.PatBind {
			field = e.Name
		}
		if field == "" {
			return out, fmt.Errorf("struct sub-pattern %s needs a field name", e)
		}
		if _, dup := seen[field]; dup {
			return out, fmt.Errorf("field `%s` is bound more than once", field)
		}
		seen[field] = struct{}{}
		member, ok := s.Member(field)
		if !ok {
			return out, fmt.Errorf("no field `%s` in %s", field, s)
		}
		if out, err = matchPattern(e, member, out); err != nil {
			return out, err
		}
	}
	if hasRest || s.Kind == ir.ShapeUnknown {
		return out, nil
	}
	var missing []string
	for _, f := range s.Fields {
		if _, ok := seen[f.Name]; !ok {
			missing = append(missing, "`"+f.Name+"`")
		}
	}
	if len(missing) > 0 {
		return out, fmt.Errorf("pattern does not mention field %s", strings.Join(missing, ", "))
	}
	return out, nil
}
