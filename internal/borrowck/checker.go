package borrowck

import (
	"fmt"
	"strings"

	"ownck/internal/ir"
	"ownck/internal/source"
)

// Checker verifies one program. It is single-threaded and must be created
// fresh for every run.
type Checker struct {
	opts      Options
	bindings  *BindingTable
	borrows   *BorrowTable
	scopeData []Scope
	// scopeStack[0] is the implicit root scope.
	scopeStack []ScopeID
	// handles maps a borrow label to its bindings, outermost first.
	handles  map[string][]handleEntry
	reporter *Reporter
	events   []Event
	record   bool
	aborted  bool
	finished bool
}

// New creates a checker with an open root scope.
func New(opts Options) *Checker {
	c := &Checker{
		opts:      opts,
		bindings:  NewBindingTable(),
		borrows:   NewBorrowTable(),
		scopeData: []Scope{{}},
		handles:   make(map[string][]handleEntry),
		reporter:  NewReporter(opts.MaxViolations),
	}
	root := c.newScope(NoScopeID, 0, source.NoLoc)
	c.scopeStack = append(c.scopeStack, root)
	return c
}

// RecordEvents enables the event log returned by Events.
func (c *Checker) RecordEvents(on bool) {
	c.record = on
}

// Check walks prog in order and closes every scope left open. It always
// completes; the outcome is read with Drain.
func (c *Checker) Check(prog *ir.Program) {
	if prog != nil {
		for i := range prog.Stmts {
			if c.aborted {
				break
			}
			c.Step(&prog.Stmts[i])
		}
	}
	c.Finish()
}

// Step routes one statement to the component responsible for it.
func (c *Checker) Step(stmt *ir.Stmt) {
	if c.aborted || c.finished || stmt == nil {
		return
	}
	at := stmt.At
	switch stmt.Kind {
	case ir.StmtDeclareBinding:
		init := c.eval(stmt.Value, at)
		c.declare(stmt.Name, stmt.Mutable, init, at)
	case ir.StmtDeclarePattern:
		c.declarePattern(stmt.Pattern, stmt.Mutable, stmt.Value, at)
	case ir.StmtAssign:
		c.Assign(stmt.Target, stmt.Value, at)
	case ir.StmtAssignPattern:
		c.assignPattern(stmt.Pattern, stmt.Value, at)
	case ir.StmtRead:
		c.Read(stmt.Target, at)
	case ir.StmtMove:
		c.MoveOut(stmt.Target, at)
	case ir.StmtBorrowShared:
		c.borrow(BorrowShared, borrowRequest{target: stmt.Target, handle: stmt.Handle, via: stmt.Via, lift: stmt.Lift}, at)
	case ir.StmtBorrowExclusive:
		c.borrow(BorrowExclusive, borrowRequest{target: stmt.Target, handle: stmt.Handle, via: stmt.Via, lift: stmt.Lift}, at)
	case ir.StmtMutate:
		c.Mutate(stmt.Target, at)
	case ir.StmtEnterScope:
		c.EnterScope(at)
	case ir.StmtExitScope:
		c.ExitScope(at)
	case ir.StmtUseBorrow:
		c.UseBorrow(stmt.Handle, at)
	default:
		// decoded documents are validated, but Step is public
		c.violate(Violation{Kind: MalformedStatement, Site: at, Detail: fmt.Sprintf("unknown statement kind %d", stmt.Kind)})
	}
}

// Finish closes all open scopes, the root included, in LIFO order.
func (c *Checker) Finish() {
	if c.finished {
		return
	}
	for len(c.scopeStack) > 0 {
		c.leaveScope(source.NoLoc)
	}
	c.finished = true
}

// HasErrors reports whether any violation was found.
func (c *Checker) HasErrors() bool {
	return c.reporter.HasErrors()
}

// Drain returns violations in discovery order and clears the log.
func (c *Checker) Drain() []Violation {
	return c.reporter.Drain()
}

// Dropped counts violations cut by MaxViolations.
func (c *Checker) Dropped() int {
	return c.reporter.Dropped()
}

// Aborted reports whether AbortOnUnknownBinding stopped the pass early.
func (c *Checker) Aborted() bool {
	return c.aborted
}

// Events returns the recorded event log.
func (c *Checker) Events() []Event {
	return c.events
}

// Bindings returns every binding ever created, shadowed ones included.
func (c *Checker) Bindings() []Binding {
	return c.bindings.Snapshot()
}

// Borrows returns every recorded borrow.
func (c *Checker) Borrows() []BorrowInfo {
	return c.borrows.Infos()
}

// ActiveBorrows returns the active borrow set of b.
func (c *Checker) ActiveBorrows(b BindingID) (shared []BorrowID, exclusive BorrowID) {
	return c.borrows.Active(b)
}

func (c *Checker) violate(v Violation) {
	c.reporter.Report(v)
	if v.Kind == UnknownBinding && c.opts.AbortOnUnknownBinding {
		c.aborted = true
	}
}

func (c *Checker) event(ev Event) {
	if c.record {
		c.events = append(c.events, ev)
	}
}

// resolve looks up path.Name and validates the member selectors against the
// binding's shape. It returns nil after reporting when either fails.
func (c *Checker) resolve(path ir.Path, at source.Loc) (*Binding, ir.Shape) {
	b := c.Lookup(path.Name)
	if b == nil {
		c.violate(Violation{Kind: UnknownBinding, Binding: path.Name, Site: at})
		return nil, ir.Shape{}
	}
	member, ok := b.Shape.Resolve(path.Fields)
	if !ok {
		c.violate(Violation{
			Kind:    ShapeMismatch,
			Binding: path.String(),
			Site:    at,
			Related: b.Decl,
			Detail:  fmt.Sprintf("`%s` has no member `%s` in %s", b.Name, strings.Join(path.Fields, "."), b.Shape),
		})
		return nil, ir.Shape{}
	}
	return b, member
}

// initResult is what an initializer hands to a new binding.
type initResult struct {
	shape  ir.Shape
	borrow BorrowID
}

// eval performs the ownership effect of an initializer.
func (c *Checker) eval(e *ir.Expr, at source.Loc) initResult {
	if e == nil {
		return initResult{}
	}
	switch e.Kind {
	case ir.ExprLiteral:
		return initResult{shape: e.Shape}
	case ir.ExprMove:
		return initResult{shape: c.MoveOut(e.Path, at)}
	case ir.ExprRead:
		return initResult{shape: c.Read(e.Path, at)}
	case ir.ExprBorrow:
		return initResult{shape: ir.Scalar(), borrow: c.borrow(BorrowShared, borrowRequest{target: e.Path}, at)}
	case ir.ExprBorrowMut:
		return initResult{shape: ir.Scalar(), borrow: c.borrow(BorrowExclusive, borrowRequest{target: e.Path}, at)}
	}
	return initResult{}
}
