package ir

import (
	"errors"
	"fmt"
)

// Validate checks the invariants the text loaders enforce while parsing.
// Binary documents are decoded straight into Program and go through it
// before the checker sees them.
func (p *Program) Validate() error {
	if p == nil {
		return errors.New("empty program")
	}
	for i := range p.Stmts {
		if err := p.Stmts[i].Validate(); err != nil {
			return fmt.Errorf("stmt %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks that the fields Kind relies on are present and well-formed.
func (s *Stmt) Validate() error {
	if s.Kind == StmtInvalid || int(s.Kind) >= len(stmtOps) {
		return fmt.Errorf("unknown statement kind %d", s.Kind)
	}
	switch s.Kind {
	case StmtDeclareBinding:
		if s.Name == "" {
			return errors.New("let requires name")
		}
		return s.Value.validate()
	case StmtDeclarePattern, StmtAssignPattern:
		if s.Pattern == nil {
			return fmt.Errorf("%s requires pattern", s.Kind)
		}
		if err := s.Pattern.validate(); err != nil {
			return err
		}
		return s.Value.validate()
	case StmtAssign:
		if err := s.Target.validate(); err != nil {
			return err
		}
		return s.Value.validate()
	case StmtBorrowShared, StmtBorrowExclusive:
		if s.Target.Name == "" && len(s.Target.Fields) == 0 && s.Via != "" {
			return nil
		}
		return s.Target.validate()
	case StmtRead, StmtMove, StmtMutate:
		return s.Target.validate()
	case StmtUseBorrow:
		if s.Handle == "" {
			return errors.New("use-borrow requires handle")
		}
	}
	return nil
}

func (p Path) validate() error {
	if p.Name == "" {
		return errors.New("empty path")
	}
	for _, sel := range p.Fields {
		if sel == "" {
			return fmt.Errorf("invalid path %q: empty selector", p)
		}
	}
	return nil
}

// nil is accepted; it stands for a literal of unknown shape.
func (e *Expr) validate() error {
	if e == nil {
		return nil
	}
	if int(e.Kind) >= len(exprOps) {
		return fmt.Errorf("unknown initializer kind %d", e.Kind)
	}
	if e.Kind == ExprLiteral {
		return e.Shape.Validate()
	}
	if err := e.Path.validate(); err != nil {
		return fmt.Errorf("%s initializer: %w", e.Kind, err)
	}
	return nil
}

// Validate rejects unknown kinds, negative array lengths and unnamed or
// duplicate struct fields, recursively.
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeUnknown, ShapeScalar:
		return nil
	case ShapeTuple, ShapeStruct:
		seen := make(map[string]struct{}, len(s.Fields))
		for _, f := range s.Fields {
			if f.Name == "" {
				return fmt.Errorf("%s member requires name", s.Kind)
			}
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("duplicate %s member %q", s.Kind, f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := f.Shape.Validate(); err != nil {
				return err
			}
		}
		return nil
	case ShapeArray:
		if s.Len < 0 {
			return fmt.Errorf("negative array length %d", s.Len)
		}
		if s.Elem != nil {
			return s.Elem.Validate()
		}
		return nil
	}
	return fmt.Errorf("unknown shape kind %d", s.Kind)
}

func (p Pattern) validate() error {
	switch p.Kind {
	case PatBind:
		if p.Name == "" {
			return errors.New("bind pattern requires name")
		}
	case PatWild, PatRest:
	case PatTuple, PatArray, PatStruct:
		for i := range p.Elems {
			if err := p.Elems[i].validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown pattern kind %d", p.Kind)
	}
	return nil
}
