package borrowck

import (
	"ownck/internal/ir"
	"ownck/internal/source"
)

// Read checks a non-consuming use of path and returns the shape read.
// Reading a live member of a partially moved composite is legal; reading the
// whole of it is not.
func (c *Checker) Read(path ir.Path, at source.Loc) ir.Shape {
	b, member := c.resolve(path, at)
	if b == nil {
		return ir.Unknown()
	}
	if moved, ok := b.movedOverlap(path.Fields); ok {
		c.violate(Violation{Kind: UseOfMovedValue, Binding: path.String(), Site: at, Related: moved})
	}
	return member
}

// MoveOut transfers ownership out of path and returns the moved shape.
// After a violation the path is still treated as moved so that later uses
// report against a consistent state.
func (c *Checker) MoveOut(path ir.Path, at source.Loc) ir.Shape {
	b, member := c.resolve(path, at)
	if b == nil {
		return ir.Unknown()
	}
	blocked := NoViolation
	if moved, ok := b.movedOverlap(path.Fields); ok {
		blocked = UseOfMovedValue
		c.violate(Violation{Kind: UseOfMovedValue, Binding: path.String(), Site: at, Related: moved})
	} else if issue := c.borrows.MoveAllowed(b.ID); issue.Blocked() {
		blocked = CannotMoveWhileBorrowed
		c.violate(Violation{Kind: CannotMoveWhileBorrowed, Binding: path.String(), Site: at, Related: c.borrowSite(issue.Borrow)})
	}
	if b.State != StateMoved {
		b.markMoved(path.Fields, at, c.opts.AllowPartialMoves)
	}
	c.event(Event{Kind: EvMove, Binding: b.ID, Name: path.String(), At: at, Scope: c.currentScope(), Blocked: blocked})
	return member
}

// Mutate checks a write through ownership (not through a borrow).
func (c *Checker) Mutate(path ir.Path, at source.Loc) {
	b, _ := c.resolve(path, at)
	if b == nil {
		return
	}
	blocked := NoViolation
	if !b.Mutable {
		blocked = ImmutableBinding
		c.violate(Violation{Kind: ImmutableBinding, Binding: b.Name, Site: at, Related: b.Decl})
	} else if moved, ok := b.movedOverlap(path.Fields); ok {
		blocked = UseOfMovedValue
		c.violate(Violation{Kind: UseOfMovedValue, Binding: path.String(), Site: at, Related: moved})
	} else if issue := c.borrows.MutationAllowed(b.ID); issue.Blocked() {
		blocked = CannotMutateWhileBorrowed
		c.violate(Violation{Kind: CannotMutateWhileBorrowed, Binding: path.String(), Site: at, Related: c.borrowSite(issue.Borrow)})
	}
	c.event(Event{Kind: EvWrite, Binding: b.ID, Name: path.String(), At: at, Scope: c.currentScope(), Blocked: blocked})
}

// Assign evaluates value and stores it into target. Assigning the whole
// binding reinitialises a moved one; assigning a member revives that member
// unless an enclosing value is moved.
func (c *Checker) Assign(target ir.Path, value *ir.Expr, at source.Loc) {
	init := c.eval(value, at)
	b, _ := c.resolve(target, at)
	if b == nil {
		return
	}
	blocked := NoViolation
	if !b.Mutable {
		blocked = ImmutableBinding
		c.violate(Violation{Kind: ImmutableBinding, Binding: b.Name, Site: at, Related: b.Decl})
	} else if moved, ok := b.enclosingMove(target.Fields); ok {
		blocked = UseOfMovedValue
		c.violate(Violation{Kind: UseOfMovedValue, Binding: target.String(), Site: at, Related: moved,
			Detail: "cannot assign to a member of a moved value"})
	} else if issue := c.borrows.MutationAllowed(b.ID); issue.Blocked() {
		blocked = CannotMutateWhileBorrowed
		c.violate(Violation{Kind: CannotMutateWhileBorrowed, Binding: target.String(), Site: at, Related: c.borrowSite(issue.Borrow)})
	}

	if target.IsWhole() {
		shape := init.shape
		if shape.Kind == ir.ShapeUnknown {
			shape = b.Shape
		}
		b.reinit(shape)
		b.Borrow = init.borrow
		if init.borrow != NoBorrowID {
			c.bindHandle(b.Name, init.borrow, b.Scope)
		}
	} else if blocked != UseOfMovedValue {
		b.reinitMember(target.Fields)
	}
	c.event(Event{Kind: EvWrite, Binding: b.ID, Name: target.String(), At: at, Scope: c.currentScope(), Blocked: blocked})
}

func (c *Checker) borrowSite(id BorrowID) source.Loc {
	if info := c.borrows.Info(id); info != nil {
		return info.Site
	}
	return source.NoLoc
}
