package ir

import (
	"fmt"

	"ownck/internal/source"
)

// StmtKind enumerates IR statements.
type StmtKind uint8

const (
	StmtInvalid StmtKind = iota
	StmtDeclareBinding
	StmtDeclarePattern
	StmtAssign
	StmtAssignPattern
	StmtRead
	StmtMove
	StmtBorrowShared
	StmtBorrowExclusive
	StmtMutate
	StmtEnterScope
	StmtExitScope
	StmtUseBorrow
)

var stmtOps = [...]string{
	StmtInvalid:         "invalid",
	StmtDeclareBinding:  "let",
	StmtDeclarePattern:  "let-pattern",
	StmtAssign:          "assign",
	StmtAssignPattern:   "assign-pattern",
	StmtRead:            "read",
	StmtMove:            "move",
	StmtBorrowShared:    "borrow",
	StmtBorrowExclusive: "borrow-mut",
	StmtMutate:          "mutate",
	StmtEnterScope:      "enter",
	StmtExitScope:       "exit",
	StmtUseBorrow:       "use-borrow",
}

// String returns the document spelling of the statement ("let", "borrow-mut", ...).
func (k StmtKind) String() string {
	if int(k) < len(stmtOps) {
		return stmtOps[k]
	}
	return "invalid"
}

// ParseStmtKind is the inverse of StmtKind.String.
func ParseStmtKind(op string) (StmtKind, error) {
	for i, s := range stmtOps {
		if i != int(StmtInvalid) && s == op {
			return StmtKind(i), nil
		}
	}
	return StmtInvalid, fmt.Errorf("unknown op %q", op)
}

// ExprKind enumerates initializer forms.
type ExprKind uint8

const (
	// ExprLiteral produces a fresh owned value of the given shape.
	ExprLiteral ExprKind = iota
	// ExprMove transfers ownership out of Path.
	ExprMove
	// ExprRead clones the value at Path; the source stays owned.
	ExprRead
	ExprBorrow
	ExprBorrowMut
)

var exprOps = [...]string{
	ExprLiteral:   "literal",
	ExprMove:      "move",
	ExprRead:      "read",
	ExprBorrow:    "borrow",
	ExprBorrowMut: "borrow-mut",
}

func (k ExprKind) String() string {
	if int(k) < len(exprOps) {
		return exprOps[k]
	}
	return "invalid"
}

func ParseExprKind(op string) (ExprKind, error) {
	for i, s := range exprOps {
		if s == op {
			return ExprKind(i), nil
		}
	}
	return ExprLiteral, fmt.Errorf("unknown initializer op %q", op)
}

// Expr is the value side of a declaration or assignment.
type Expr struct {
	Kind  ExprKind `msgpack:"k"`
	Path  Path     `msgpack:"path"`
	Shape Shape    `msgpack:"shape"`
}

func Literal(shape Shape) *Expr { return &Expr{Kind: ExprLiteral, Shape: shape} }

func MoveOf(path string) *Expr { return &Expr{Kind: ExprMove, Path: P(path)} }

func ReadOf(path string) *Expr { return &Expr{Kind: ExprRead, Path: P(path)} }

func BorrowOf(path string) *Expr { return &Expr{Kind: ExprBorrow, Path: P(path)} }

func BorrowMutOf(path string) *Expr { return &Expr{Kind: ExprBorrowMut, Path: P(path)} }

// Stmt is a single IR statement. Which fields are meaningful depends on Kind:
//
//	DeclareBinding   Name, Mutable, Value
//	DeclarePattern   Pattern, Mutable, Value
//	Assign           Target, Value
//	AssignPattern    Pattern, Value
//	Read, Move       Target
//	Borrow*          Target, Handle, Via, Lift
//	Mutate           Target
//	UseBorrow        Handle
type Stmt struct {
	Kind    StmtKind   `msgpack:"k"`
	At      source.Loc `msgpack:"at"`
	Name    string     `msgpack:"name,omitempty"`
	Mutable bool       `msgpack:"mut,omitempty"`
	Target  Path       `msgpack:"target"`
	Value   *Expr      `msgpack:"value,omitempty"`
	Pattern *Pattern   `msgpack:"pattern,omitempty"`
	Handle  string     `msgpack:"handle,omitempty"`
	Via     string     `msgpack:"via,omitempty"`
	Lift    uint8      `msgpack:"lift,omitempty"`
}

// Program is an ordered statement list; the root scope is implicit.
type Program struct {
	Name  string `msgpack:"name,omitempty"`
	File  string `msgpack:"file,omitempty"`
	Stmts []Stmt `msgpack:"stmts"`
}
