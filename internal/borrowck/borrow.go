package borrowck

import (
	"fmt"

	"fortio.org/safecast"

	"ownck/internal/source"
)

// BorrowID identifies a borrow entry.
type BorrowID uint32

// NoBorrowID marks the absence of a borrow.
const NoBorrowID BorrowID = 0

// BorrowKind differentiates shared vs exclusive borrows.
type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	BorrowExclusive
)

func (k BorrowKind) String() string {
	if k == BorrowExclusive {
		return "exclusive"
	}
	return "shared"
}

// BorrowInfo stores metadata about each borrow.
type BorrowInfo struct {
	ID     BorrowID
	Kind   BorrowKind
	Target BindingID
	Root   ScopeID
	Site   source.Loc
	Handle string
}

type borrowState struct {
	shared    []BorrowID
	exclusive BorrowID
}

// BorrowIssueKind enumerates reasons a borrow-related action fails.
type BorrowIssueKind uint8

const (
	BorrowIssueNone BorrowIssueKind = iota
	// BorrowIssueConflictShared: an exclusive borrow was requested while shared ones are active.
	BorrowIssueConflictShared
	// BorrowIssueConflictExclusive: any borrow was requested while an exclusive one is active.
	BorrowIssueConflictExclusive
	// BorrowIssueFrozen: mutation or move while shared borrows are active.
	BorrowIssueFrozen
	// BorrowIssueTaken: mutation or move while an exclusive borrow is active.
	BorrowIssueTaken
)

// BorrowIssue carries information about conflicts.
type BorrowIssue struct {
	Kind   BorrowIssueKind
	Borrow BorrowID
}

func (i BorrowIssue) Blocked() bool {
	return i.Kind != BorrowIssueNone
}

// BorrowTable tracks active borrows per binding and per rooted scope.
type BorrowTable struct {
	infos        []BorrowInfo
	bindingState map[BindingID]borrowState
	scopeBorrows map[ScopeID][]BorrowID
}

// NewBorrowTable builds an empty borrow table ready for tracking.
func NewBorrowTable() *BorrowTable {
	return &BorrowTable{
		infos:        []BorrowInfo{{}},
		bindingState: make(map[BindingID]borrowState),
		scopeBorrows: make(map[ScopeID][]BorrowID),
	}
}

// BeginBorrow registers a borrow of target rooted in scope. A conflicting
// request is not recorded, so exclusivity holds in every reachable state.
func (bt *BorrowTable) BeginBorrow(site source.Loc, kind BorrowKind, target BindingID, scope ScopeID, handle string) (BorrowID, BorrowIssue) {
	if bt == nil || !target.IsValid() || !scope.IsValid() {
		return NoBorrowID, BorrowIssue{}
	}
	state := bt.bindingState[target]
	switch kind {
	case BorrowShared:
		if state.exclusive != NoBorrowID {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictExclusive, Borrow: state.exclusive}
		}
	case BorrowExclusive:
		if state.exclusive != NoBorrowID {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictExclusive, Borrow: state.exclusive}
		}
		if len(state.shared) > 0 {
			return NoBorrowID, BorrowIssue{Kind: BorrowIssueConflictShared, Borrow: state.shared[0]}
		}
	}
	value, err := safecast.Conv[uint32](len(bt.infos))
	if err != nil {
		panic(fmt.Errorf("borrow table overflow: %w", err))
	}
	id := BorrowID(value)
	bt.infos = append(bt.infos, BorrowInfo{
		ID:     id,
		Kind:   kind,
		Target: target,
		Root:   scope,
		Site:   site,
		Handle: handle,
	})
	switch kind {
	case BorrowShared:
		state.shared = append(state.shared, id)
	case BorrowExclusive:
		state.exclusive = id
	}
	bt.bindingState[target] = state
	bt.scopeBorrows[scope] = append(bt.scopeBorrows[scope], id)
	return id, BorrowIssue{}
}

// MutationAllowed verifies whether the binding can be written through ownership.
func (bt *BorrowTable) MutationAllowed(target BindingID) BorrowIssue {
	return bt.blocking(target)
}

// MoveAllowed verifies whether the binding can be moved from.
func (bt *BorrowTable) MoveAllowed(target BindingID) BorrowIssue {
	return bt.blocking(target)
}

func (bt *BorrowTable) blocking(target BindingID) BorrowIssue {
	if bt == nil || !target.IsValid() {
		return BorrowIssue{}
	}
	state, ok := bt.bindingState[target]
	if !ok {
		return BorrowIssue{}
	}
	if len(state.shared) > 0 {
		return BorrowIssue{Kind: BorrowIssueFrozen, Borrow: state.shared[0]}
	}
	if state.exclusive != NoBorrowID {
		return BorrowIssue{Kind: BorrowIssueTaken, Borrow: state.exclusive}
	}
	return BorrowIssue{}
}

// Active returns the current borrow set of target.
func (bt *BorrowTable) Active(target BindingID) (shared []BorrowID, exclusive BorrowID) {
	if bt == nil {
		return nil, NoBorrowID
	}
	state := bt.bindingState[target]
	return append([]BorrowID(nil), state.shared...), state.exclusive
}

// EndScope releases all borrows rooted in scope and returns them in creation order.
func (bt *BorrowTable) EndScope(scope ScopeID) []BorrowID {
	if bt == nil || !scope.IsValid() {
		return nil
	}
	ids := bt.scopeBorrows[scope]
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		info := bt.Info(id)
		if info == nil {
			continue
		}
		state := bt.bindingState[info.Target]
		switch info.Kind {
		case BorrowShared:
			state.shared = dropBorrowID(state.shared, id)
		case BorrowExclusive:
			if state.exclusive == id {
				state.exclusive = NoBorrowID
			}
		}
		if len(state.shared) == 0 && state.exclusive == NoBorrowID {
			delete(bt.bindingState, info.Target)
		} else {
			bt.bindingState[info.Target] = state
		}
	}
	delete(bt.scopeBorrows, scope)
	return ids
}

// Info returns metadata for the borrow.
func (bt *BorrowTable) Info(id BorrowID) *BorrowInfo {
	if bt == nil || id == NoBorrowID || int(id) >= len(bt.infos) {
		return nil
	}
	return &bt.infos[id]
}

// Infos returns a shallow copy of stored borrow infos (excluding sentinel).
func (bt *BorrowTable) Infos() []BorrowInfo {
	if bt == nil || len(bt.infos) <= 1 {
		return nil
	}
	out := make([]BorrowInfo, len(bt.infos)-1)
	copy(out, bt.infos[1:])
	return out
}

// ActiveCount reports how many borrows are still rooted in open scopes.
func (bt *BorrowTable) ActiveCount() int {
	n := 0
	for _, ids := range bt.scopeBorrows {
		n += len(ids)
	}
	return n
}

// dropBorrowID removes target preserving order, so diagnostics that pick
// state.shared[0] always point at the oldest live borrow.
func dropBorrowID(ids []BorrowID, target BorrowID) []BorrowID {
	for i, id := range ids {
		if id == target {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
