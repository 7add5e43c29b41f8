package ir

import (
	"fmt"

	"fortio.org/safecast"

	"ownck/internal/source"
)

// Builder appends statements to a Program, stamping each with a location
// whose line is the 1-based statement index.
type Builder struct {
	prog Program
}

func NewBuilder(file string) *Builder {
	return &Builder{prog: Program{Name: file, File: file}}
}

// Add appends stmt. A statement without a location gets the next line.
func (b *Builder) Add(stmt Stmt) source.Loc {
	if !stmt.At.IsValid() {
		line, err := safecast.Conv[uint32](len(b.prog.Stmts) + 1)
		if err != nil {
			panic(fmt.Errorf("statement index overflow: %w", err))
		}
		stmt.At = source.Loc{File: b.prog.File, Line: line}
	}
	b.prog.Stmts = append(b.prog.Stmts, stmt)
	return stmt.At
}

func (b *Builder) Let(name string, mutable bool, init *Expr) source.Loc {
	return b.Add(Stmt{Kind: StmtDeclareBinding, Name: source.Normalize(name), Mutable: mutable, Value: init})
}

func (b *Builder) LetPattern(pat Pattern, mutable bool, init *Expr) source.Loc {
	return b.Add(Stmt{Kind: StmtDeclarePattern, Pattern: &pat, Mutable: mutable, Value: init})
}

func (b *Builder) Assign(target string, value *Expr) source.Loc {
	return b.Add(Stmt{Kind: StmtAssign, Target: P(target), Value: value})
}

func (b *Builder) AssignPattern(pat Pattern, value *Expr) source.Loc {
	return b.Add(Stmt{Kind: StmtAssignPattern, Pattern: &pat, Value: value})
}

func (b *Builder) Read(path string) source.Loc {
	return b.Add(Stmt{Kind: StmtRead, Target: P(path)})
}

func (b *Builder) Move(path string) source.Loc {
	return b.Add(Stmt{Kind: StmtMove, Target: P(path)})
}

// Borrow records a shared borrow; handle may be empty.
func (b *Builder) Borrow(path, handle string) source.Loc {
	return b.Add(Stmt{Kind: StmtBorrowShared, Target: P(path), Handle: handle})
}

func (b *Builder) BorrowMut(path, handle string) source.Loc {
	return b.Add(Stmt{Kind: StmtBorrowExclusive, Target: P(path), Handle: handle})
}

// Reborrow borrows through an existing handle. An empty path borrows the
// handle's own target.
func (b *Builder) Reborrow(kind StmtKind, path, handle, via string) source.Loc {
	var target Path
	if path != "" {
		target = P(path)
	}
	return b.Add(Stmt{Kind: kind, Target: target, Handle: handle, Via: via})
}

// BorrowLifted roots the borrow lift scopes above the current one.
func (b *Builder) BorrowLifted(kind StmtKind, path, handle string, lift uint8) source.Loc {
	return b.Add(Stmt{Kind: kind, Target: P(path), Handle: handle, Lift: lift})
}

func (b *Builder) Mutate(path string) source.Loc {
	return b.Add(Stmt{Kind: StmtMutate, Target: P(path)})
}

func (b *Builder) UseBorrow(handle string) source.Loc {
	return b.Add(Stmt{Kind: StmtUseBorrow, Handle: handle})
}

func (b *Builder) Enter() source.Loc {
	return b.Add(Stmt{Kind: StmtEnterScope})
}

func (b *Builder) Exit() source.Loc {
	return b.Add(Stmt{Kind: StmtExitScope})
}

// Program returns the built program. The builder must not be used afterwards.
func (b *Builder) Program() *Program {
	return &b.prog
}
