package borrowck

import (
	"fmt"

	"fortio.org/safecast"

	"ownck/internal/source"
)

// ScopeID identifies a lexical scope. Ids are never reused within a run, so
// a closed scope stays closed.
type ScopeID uint32

const NoScopeID ScopeID = 0

func (id ScopeID) IsValid() bool { return id != NoScopeID }

// Scope is one lexical region.
type Scope struct {
	ID       ScopeID
	Parent   ScopeID
	Depth    int
	Bindings []BindingID
	Open     bool
	Entered  source.Loc

	names map[string]BindingID
}

func (c *Checker) newScope(parent ScopeID, depth int, at source.Loc) ScopeID {
	value, err := safecast.Conv[uint32](len(c.scopeData))
	if err != nil {
		panic(fmt.Errorf("scope index overflow: %w", err))
	}
	id := ScopeID(value)
	c.scopeData = append(c.scopeData, Scope{
		ID:      id,
		Parent:  parent,
		Depth:   depth,
		Open:    true,
		Entered: at,
		names:   make(map[string]BindingID),
	})
	return id
}

// EnterScope pushes a scope whose parent is the current top.
func (c *Checker) EnterScope(at source.Loc) ScopeID {
	id := c.newScope(c.currentScope(), len(c.scopeStack), at)
	c.scopeStack = append(c.scopeStack, id)
	c.event(Event{Kind: EvScopeEnter, Scope: id, At: at})
	return id
}

// ExitScope pops the top scope, releasing its borrows and destroying its
// bindings. The root scope can only be closed by Finish.
func (c *Checker) ExitScope(at source.Loc) {
	if len(c.scopeStack) <= 1 {
		c.violate(Violation{Kind: UnbalancedScope, Site: at})
		return
	}
	c.leaveScope(at)
}

func (c *Checker) leaveScope(at source.Loc) {
	top := c.scopeStack[len(c.scopeStack)-1]
	c.scopeStack = c.scopeStack[:len(c.scopeStack)-1]

	for _, id := range c.borrows.EndScope(top) {
		info := c.borrows.Info(id)
		c.event(Event{Kind: EvBorrowEnd, Borrow: id, BorrowKind: info.Kind, Binding: info.Target, Scope: top, At: at})
	}
	scope := c.scope(top)
	for _, bid := range scope.Bindings {
		b := c.bindings.Get(bid)
		b.Alive = false
		c.event(Event{Kind: EvDrop, Binding: bid, Name: b.Name, Scope: top, At: at})
	}
	scope.Open = false
	scope.names = nil
	c.event(Event{Kind: EvScopeExit, Scope: top, At: at})
}

func (c *Checker) currentScope() ScopeID {
	if len(c.scopeStack) == 0 {
		return NoScopeID
	}
	return c.scopeStack[len(c.scopeStack)-1]
}

func (c *Checker) scope(id ScopeID) *Scope {
	if !id.IsValid() || int(id) >= len(c.scopeData) {
		return nil
	}
	return &c.scopeData[id]
}

// scopeOpen reports whether id is still on the stack.
func (c *Checker) scopeOpen(id ScopeID) bool {
	s := c.scope(id)
	return s != nil && s.Open
}

// Lookup resolves name innermost-first, realising shadowing.
func (c *Checker) Lookup(name string) *Binding {
	name = source.Normalize(name)
	for i := len(c.scopeStack) - 1; i >= 0; i-- {
		s := c.scope(c.scopeStack[i])
		if id, ok := s.names[name]; ok {
			return c.bindings.Get(id)
		}
	}
	return nil
}

// declare introduces a binding into the current scope.
func (c *Checker) declare(name string, mutable bool, init initResult, at source.Loc) *Binding {
	name = source.Normalize(name)
	top := c.currentScope()
	scope := c.scope(top)
	prev := NoBindingID
	if shadowed := c.Lookup(name); shadowed != nil {
		prev = shadowed.ID
	}
	b := c.bindings.New(name, mutable, top, init.shape, at)
	b.Shadows = prev
	b.Borrow = init.borrow
	scope.Bindings = append(scope.Bindings, b.ID)
	scope.names[name] = b.ID
	if init.borrow != NoBorrowID {
		c.bindHandle(name, init.borrow, top)
	}
	return b
}

// Scopes returns a copy of every scope record created during the run.
func (c *Checker) Scopes() []Scope {
	if len(c.scopeData) <= 1 {
		return nil
	}
	out := make([]Scope, len(c.scopeData)-1)
	copy(out, c.scopeData[1:])
	for i := range out {
		out[i].names = nil
	}
	return out
}
