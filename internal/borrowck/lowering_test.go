package borrowck

import (
	"testing"

	"ownck/internal/ir"
)

// Small source programs as a front-end lowers them. Copy and clone are reads,
// a dereference is use-borrow, a call taking &mut opens a scope.
func TestLoweredOwnershipExamples(t *testing.T) {
	str := func() *ir.Expr { return ir.Literal(ir.Struct(ir.F("buf", ir.Scalar()), ir.F("len", ir.Scalar()))) }

	tests := []struct {
		name  string
		build func(b *ir.Builder)
		want  []ViolationKind
	}{
		{
			name: "push onto owned string",
			build: func(b *ir.Builder) {
				b.Let("str", true, str())
				b.Mutate("str")
				b.Read("str")
			},
		},
		{
			name: "copy scalar keeps source",
			build: func(b *ir.Builder) {
				b.Let("x", false, scalar())
				b.Let("y", false, ir.ReadOf("x"))
				b.Read("x")
				b.Read("y")
			},
		},
		{
			name: "move string then use target",
			build: func(b *ir.Builder) {
				b.Let("x", false, str())
				b.Let("y", false, ir.MoveOf("x"))
				b.Read("y")
			},
		},
		{
			name: "use string after move",
			build: func(b *ir.Builder) {
				b.Let("x", false, str())
				b.Let("y", false, ir.MoveOf("x"))
				b.Read("x")
			},
			want: []ViolationKind{UseOfMovedValue},
		},
		{
			name: "clone keeps source",
			build: func(b *ir.Builder) {
				b.Let("x", false, str())
				b.Let("y", false, ir.ReadOf("x"))
				b.Read("x")
				b.Read("y")
			},
		},
		{
			name: "read owner and dereference shared borrow",
			build: func(b *ir.Builder) {
				b.Let("x", false, scalar())
				b.Let("y", false, ir.BorrowOf("x"))
				b.Read("x")
				b.UseBorrow("y")
			},
		},
		{
			name: "pass exclusive borrow to a call",
			build: func(b *ir.Builder) {
				b.Let("str", true, str())
				b.Enter()
				b.Let("s", false, ir.BorrowMutOf("str"))
				b.UseBorrow("s")
				b.Exit()
				b.Read("str")
				b.Mutate("str")
			},
		},
		{
			name: "mutate owner while call holds exclusive borrow",
			build: func(b *ir.Builder) {
				b.Let("str", true, str())
				b.Enter()
				b.Let("s", false, ir.BorrowMutOf("str"))
				b.Mutate("str")
				b.Exit()
			},
			want: []ViolationKind{CannotMutateWhileBorrowed},
		},
		{
			name: "exclusive borrow between shared borrows",
			build: func(b *ir.Builder) {
				b.Let("str", true, str())
				b.Let("s1", false, ir.BorrowOf("str"))
				b.Let("s3", false, ir.BorrowMutOf("str"))
				b.Let("s2", false, ir.BorrowOf("str"))
			},
			want: []ViolationKind{ConflictingBorrow},
		},
		{
			name: "return reference to local",
			build: func(b *ir.Builder) {
				b.Enter()
				b.Let("str", false, str())
				b.BorrowLifted(ir.StmtBorrowShared, "str", "r", 1)
				b.Exit()
				b.UseBorrow("r")
			},
			want: []ViolationKind{BorrowOutlivesOwner, UseOfExpiredBorrow},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ir.NewBuilder("demo.src")
			tt.build(b)
			expectKinds(t, checkDefault(t, b), tt.want...)
		})
	}
}
