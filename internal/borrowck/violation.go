package borrowck

import (
	"fmt"

	"ownck/internal/diag"
	"ownck/internal/source"
)

// ViolationKind names the rule a program broke.
type ViolationKind uint8

const (
	NoViolation ViolationKind = iota
	UseOfMovedValue
	CannotMoveWhileBorrowed
	ConflictingBorrow
	ConflictingExclusiveBorrow
	CannotMutateWhileBorrowed
	UseOfExpiredBorrow
	ShapeMismatch
	UnknownBinding
	ImmutableBinding
	BorrowOutlivesOwner
	UnbalancedScope
	MalformedStatement
)

var violationNames = [...]string{
	NoViolation:                "NoViolation",
	UseOfMovedValue:            "UseOfMovedValue",
	CannotMoveWhileBorrowed:    "CannotMoveWhileBorrowed",
	ConflictingBorrow:          "ConflictingBorrow",
	ConflictingExclusiveBorrow: "ConflictingExclusiveBorrow",
	CannotMutateWhileBorrowed:  "CannotMutateWhileBorrowed",
	UseOfExpiredBorrow:         "UseOfExpiredBorrow",
	ShapeMismatch:              "ShapeMismatch",
	UnknownBinding:             "UnknownBinding",
	ImmutableBinding:           "ImmutableBinding",
	BorrowOutlivesOwner:        "BorrowOutlivesOwner",
	UnbalancedScope:            "UnbalancedScope",
	MalformedStatement:         "MalformedStatement",
}

func (k ViolationKind) String() string {
	if int(k) < len(violationNames) {
		return violationNames[k]
	}
	return "unknown"
}

// Malformed reports whether the kind signals broken IR rather than an
// ownership-discipline defect.
func (k ViolationKind) Malformed() bool {
	return k == UnknownBinding || k == UnbalancedScope || k == MalformedStatement
}

// Code maps the kind to its stable diagnostic code.
func (k ViolationKind) Code() diag.Code {
	switch k {
	case UseOfMovedValue:
		return diag.OwnUseOfMovedValue
	case CannotMoveWhileBorrowed:
		return diag.OwnCannotMoveWhileBorrowed
	case ConflictingBorrow:
		return diag.OwnConflictingBorrow
	case ConflictingExclusiveBorrow:
		return diag.OwnConflictingExclusiveBorrow
	case CannotMutateWhileBorrowed:
		return diag.OwnCannotMutateWhileBorrowed
	case UseOfExpiredBorrow:
		return diag.OwnUseOfExpiredBorrow
	case ShapeMismatch:
		return diag.OwnShapeMismatch
	case UnknownBinding:
		return diag.IRUnknownBinding
	case ImmutableBinding:
		return diag.OwnImmutableBinding
	case BorrowOutlivesOwner:
		return diag.OwnBorrowOutlivesOwner
	case UnbalancedScope:
		return diag.IRUnbalancedScope
	case MalformedStatement:
		return diag.IRInvalidDocument
	}
	return diag.UnknownCode
}

// Violation is an immutable record of one detected rule break.
type Violation struct {
	Kind    ViolationKind `msgpack:"kind" json:"kind"`
	Binding string        `msgpack:"binding" json:"binding"`
	Site    source.Loc    `msgpack:"site" json:"site"`
	Related source.Loc    `msgpack:"related" json:"related"`
	Detail  string        `msgpack:"detail,omitempty" json:"detail,omitempty"`
}

// Message renders a one-line description.
func (v Violation) Message() string {
	var msg string
	switch v.Kind {
	case UseOfMovedValue:
		msg = fmt.Sprintf("use of moved value `%s`", v.Binding)
	case CannotMoveWhileBorrowed:
		msg = fmt.Sprintf("cannot move out of `%s` because it is borrowed", v.Binding)
	case ConflictingBorrow:
		msg = fmt.Sprintf("cannot borrow `%s` exclusively because it is already borrowed", v.Binding)
	case ConflictingExclusiveBorrow:
		msg = fmt.Sprintf("cannot borrow `%s` as shared because it is exclusively borrowed", v.Binding)
	case CannotMutateWhileBorrowed:
		msg = fmt.Sprintf("cannot mutate `%s` because it is borrowed", v.Binding)
	case UseOfExpiredBorrow:
		msg = fmt.Sprintf("borrow `%s` is used after its scope ended", v.Binding)
	case ShapeMismatch:
		msg = fmt.Sprintf("pattern does not match the shape of `%s`", v.Binding)
	case UnknownBinding:
		msg = fmt.Sprintf("cannot find binding `%s` in this scope", v.Binding)
	case ImmutableBinding:
		msg = fmt.Sprintf("cannot mutate immutable binding `%s`", v.Binding)
	case BorrowOutlivesOwner:
		msg = fmt.Sprintf("borrow of `%s` would outlive its owner", v.Binding)
	case UnbalancedScope:
		msg = "scope exit without a matching entry"
	case MalformedStatement:
		msg = "malformed statement"
	default:
		msg = v.Kind.String()
	}
	if v.Detail != "" {
		msg += ": " + v.Detail
	}
	return msg
}

func (v Violation) relatedNote() string {
	switch v.Kind {
	case UseOfMovedValue:
		return "value moved here"
	case CannotMoveWhileBorrowed, ConflictingBorrow, ConflictingExclusiveBorrow, CannotMutateWhileBorrowed:
		return "borrow created here"
	case UseOfExpiredBorrow:
		return "borrow created here, released when its scope closed"
	case ImmutableBinding, BorrowOutlivesOwner, ShapeMismatch:
		return "binding declared here"
	}
	return "related event"
}

// Diagnostic converts the violation into the shared diagnostic model.
func (v Violation) Diagnostic() diag.Diagnostic {
	d := diag.NewError(v.Kind.Code(), v.Site, v.Message())
	if v.Related.IsValid() {
		d = d.WithNote(v.Related, v.relatedNote())
	}
	return d
}

// Reporter is the append-only violation log of one run.
type Reporter struct {
	items   []Violation
	max     int
	dropped int
}

func NewReporter(max int) *Reporter {
	return &Reporter{max: max}
}

// Report appends v; it returns false when the cap dropped it.
func (r *Reporter) Report(v Violation) bool {
	if r.max > 0 && len(r.items) >= r.max {
		r.dropped++
		return false
	}
	r.items = append(r.items, v)
	return true
}

func (r *Reporter) HasErrors() bool {
	return len(r.items) > 0 || r.dropped > 0
}

func (r *Reporter) Len() int {
	return len(r.items)
}

// Dropped counts violations rejected by MaxViolations.
func (r *Reporter) Dropped() int {
	return r.dropped
}

// Items returns the log without clearing it. Do not modify the result.
func (r *Reporter) Items() []Violation {
	return r.items
}

// Drain returns the log in discovery order and clears it.
func (r *Reporter) Drain() []Violation {
	out := r.items
	r.items = nil
	r.dropped = 0
	return out
}
