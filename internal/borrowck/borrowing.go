package borrowck

import (
	"ownck/internal/ir"
	"ownck/internal/source"
)

type borrowRequest struct {
	target ir.Path
	handle string
	via    string
	lift   uint8
}

// BorrowShared lends path out read-only. The returned id is NoBorrowID when
// the borrow was rejected.
func (c *Checker) BorrowShared(path ir.Path, handle string, at source.Loc) BorrowID {
	return c.borrow(BorrowShared, borrowRequest{target: path, handle: handle}, at)
}

// BorrowExclusive lends path out with exclusive access.
func (c *Checker) BorrowExclusive(path ir.Path, handle string, at source.Loc) BorrowID {
	return c.borrow(BorrowExclusive, borrowRequest{target: path, handle: handle}, at)
}

func (c *Checker) borrow(kind BorrowKind, req borrowRequest, at source.Loc) BorrowID {
	var b *Binding
	if req.via != "" {
		info, ok := c.liveHandle(req.via, at)
		if !ok {
			return NoBorrowID
		}
		if req.target.Name == "" {
			b = c.bindings.Get(info.Target)
			req.target = ir.Path{Name: b.Name}
		}
	}
	if b == nil {
		if b, _ = c.resolve(req.target, at); b == nil {
			return NoBorrowID
		}
	}

	if moved, ok := b.movedOverlap(req.target.Fields); ok {
		c.violate(Violation{Kind: UseOfMovedValue, Binding: req.target.String(), Site: at, Related: moved})
		c.event(Event{Kind: EvBorrowStart, BorrowKind: kind, Binding: b.ID, Name: req.target.String(), At: at, Scope: c.currentScope(), Blocked: UseOfMovedValue})
		return NoBorrowID
	}
	if kind == BorrowExclusive && !b.Mutable {
		c.violate(Violation{Kind: ImmutableBinding, Binding: b.Name, Site: at, Related: b.Decl,
			Detail: "an exclusive borrow requires a mutable binding"})
		c.event(Event{Kind: EvBorrowStart, BorrowKind: kind, Binding: b.ID, Name: req.target.String(), At: at, Scope: c.currentScope(), Blocked: ImmutableBinding})
		return NoBorrowID
	}

	root := c.borrowRoot(b, req.lift, at)
	id, issue := c.borrows.BeginBorrow(at, kind, b.ID, root, req.handle)
	if issue.Blocked() {
		vk := ConflictingBorrow
		if kind == BorrowShared {
			vk = ConflictingExclusiveBorrow
		}
		c.violate(Violation{Kind: vk, Binding: req.target.String(), Site: at, Related: c.borrowSite(issue.Borrow)})
		c.event(Event{Kind: EvBorrowStart, BorrowKind: kind, Binding: b.ID, Name: req.target.String(), At: at, Scope: root, Blocked: vk})
		return NoBorrowID
	}
	if req.handle != "" {
		c.bindHandle(req.handle, id, c.currentScope())
	}
	c.event(Event{Kind: EvBorrowStart, Borrow: id, BorrowKind: kind, Binding: b.ID, Name: req.target.String(), At: at, Scope: root})
	return id
}

// borrowRoot picks the scope the borrow lives in: the current scope, or lift
// scopes further out. A root outside the owner's scope is clamped to it.
func (c *Checker) borrowRoot(b *Binding, lift uint8, at source.Loc) ScopeID {
	idx := max(len(c.scopeStack)-1-int(lift), 0)
	root := c.scopeStack[idx]
	if c.scope(root).Depth < c.scope(b.Scope).Depth {
		c.violate(Violation{Kind: BorrowOutlivesOwner, Binding: b.Name, Site: at, Related: b.Decl})
		root = b.Scope
	}
	return root
}

// UseBorrow reads through a previously created borrow.
func (c *Checker) UseBorrow(handle string, at source.Loc) {
	c.liveHandle(handle, at)
}

// liveHandle resolves a handle label and checks its root scope is still open.
// The expiry check runs before any binding lookup, so a reborrow through an
// expired handle reports UseOfExpiredBorrow rather than UnknownBinding.
func (c *Checker) liveHandle(handle string, at source.Loc) (*BorrowInfo, bool) {
	id, ok := c.resolveHandle(handle)
	if !ok {
		c.violate(Violation{Kind: UnknownBinding, Binding: handle, Site: at, Detail: "no borrow with this handle"})
		return nil, false
	}
	info := c.borrows.Info(id)
	if !c.scopeOpen(info.Root) {
		c.violate(Violation{Kind: UseOfExpiredBorrow, Binding: handle, Site: at, Related: info.Site})
		return nil, false
	}
	return info, true
}

// handleEntry ties a label to the scope it was introduced in.
type handleEntry struct {
	borrow BorrowID
	scope  ScopeID
}

// bindHandle labels id inside scope. Entries of closed scopes at the tail are
// dropped first; rebinding in the same scope replaces the entry.
func (c *Checker) bindHandle(label string, id BorrowID, scope ScopeID) {
	chain := c.handles[label]
	for len(chain) > 0 && !c.scopeOpen(chain[len(chain)-1].scope) {
		chain = chain[:len(chain)-1]
	}
	if n := len(chain); n > 0 && chain[n-1].scope == scope {
		chain[n-1].borrow = id
	} else {
		chain = append(chain, handleEntry{borrow: id, scope: scope})
	}
	c.handles[label] = chain
}

// resolveHandle picks the label bound in the innermost open scope, so an
// inner label stops shadowing once its scope closes. When every scope that
// introduced the label is closed the latest borrow is returned; its root
// decides whether the use is still legal.
func (c *Checker) resolveHandle(label string) (BorrowID, bool) {
	chain := c.handles[label]
	if len(chain) == 0 {
		return NoBorrowID, false
	}
	for i := len(chain) - 1; i >= 0; i-- {
		if c.scopeOpen(chain[i].scope) {
			return chain[i].borrow, true
		}
	}
	return chain[len(chain)-1].borrow, true
}
