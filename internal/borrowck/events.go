package borrowck

import (
	"ownck/internal/source"
)

// EventKind identifies the type of event recorded during analysis.
type EventKind uint8

const (
	// EvBorrowStart indicates the beginning of a borrow.
	EvBorrowStart EventKind = iota
	// EvBorrowEnd indicates the end of a borrow.
	EvBorrowEnd
	EvMove
	EvWrite
	EvDrop
	EvScopeEnter
	EvScopeExit
)

func (k EventKind) String() string {
	switch k {
	case EvBorrowStart:
		return "borrow_start"
	case EvBorrowEnd:
		return "borrow_end"
	case EvMove:
		return "move"
	case EvWrite:
		return "write"
	case EvDrop:
		return "drop"
	case EvScopeEnter:
		return "scope_enter"
	case EvScopeExit:
		return "scope_exit"
	default:
		return "unknown"
	}
}

// Event is a lightweight log entry produced while checking.
// It is meant for downstream debug output and must not affect diagnostics.
type Event struct {
	Kind EventKind

	// Borrow is the borrow entry associated with this event (when applicable).
	Borrow BorrowID

	// BorrowKind is only meaningful for EvBorrowStart.
	BorrowKind BorrowKind

	Binding BindingID
	Name    string

	At    source.Loc
	Scope ScopeID

	// Blocked records the violation reported for this event, if any.
	Blocked ViolationKind

	Note string
}
