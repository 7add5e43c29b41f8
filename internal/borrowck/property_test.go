package borrowck

import (
	"math/rand/v2"
	"strconv"
	"testing"

	"ownck/internal/ir"
)

// randomProgram builds a statement soup over a handful of names so that
// borrows, moves and scope exits interleave densely.
func randomProgram(r *rand.Rand, n int) *ir.Program {
	names := []string{"a", "b", "c"}
	handle := func() string { return "h" + strconv.Itoa(r.IntN(4)) }
	b := ir.NewBuilder("rand.oir")
	for range n {
		name := names[r.IntN(len(names))]
		switch r.IntN(11) {
		case 0, 1:
			b.Let(name, r.IntN(3) > 0, ir.Literal(ir.Tuple(ir.Scalar(), ir.Scalar())))
		case 2:
			b.Borrow(name, handle())
		case 3:
			b.BorrowMut(name, handle())
		case 4:
			kind := ir.StmtBorrowShared
			if r.IntN(2) == 0 {
				kind = ir.StmtBorrowExclusive
			}
			b.Reborrow(kind, "", handle(), handle())
		case 5:
			b.Move(name + "." + strconv.Itoa(r.IntN(2)))
		case 6:
			b.Mutate(name)
		case 7:
			b.Enter()
		case 8:
			b.Exit()
		case 9:
			b.UseBorrow(handle())
		case 10:
			b.Read(name)
		}
	}
	return b.Program()
}

func TestExclusivityHoldsInEveryState(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := range 200 {
		prog := randomProgram(r, 60)
		c := New(DefaultOptions())
		for i := range prog.Stmts {
			c.Step(&prog.Stmts[i])
			for id := BindingID(1); int(id) <= c.bindings.Len(); id++ {
				shared, exclusive := c.ActiveBorrows(id)
				if exclusive != NoBorrowID && len(shared) > 0 {
					t.Fatalf("round %d stmt %d: binding %d has shared and exclusive borrows", round, i, id)
				}
			}
			for scope := range c.borrows.scopeBorrows {
				if !c.scopeOpen(scope) {
					t.Fatalf("round %d stmt %d: borrow rooted in closed scope %d", round, i, scope)
				}
			}
		}
		c.Finish()
		if c.borrows.ActiveCount() != 0 {
			t.Fatalf("round %d: borrows survive Finish", round)
		}
	}
}

func TestReadAfterMoveAlwaysReported(t *testing.T) {
	shapes := []ir.Shape{ir.Scalar(), point(), ir.Array(2, ir.Scalar()), ir.Unknown()}
	for _, shape := range shapes {
		for _, mutable := range []bool{false, true} {
			b := ir.NewBuilder("m.oir")
			b.Let("x", mutable, ir.Literal(shape))
			b.Move("x")
			b.Read("x")
			if vs := checkDefault(t, b); !hasKind(vs, UseOfMovedValue) {
				t.Fatalf("shape %s mutable=%v: expected UseOfMovedValue, got %v", shape, mutable, kinds(vs))
			}
		}
	}
}
