package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
	KindHeartbeat // periodic liveness signal
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers CLI-level work: loading the manifest, walking
	// directories, rendering output.
	ScopeDriver Scope = iota + 1
	// ScopeFile covers one IR document.
	ScopeFile
	// ScopeStmt covers verifier events inside one document.
	ScopeStmt
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopeFile:
		return "file"
	case ScopeStmt:
		return "stmt"
	default:
		return "unknown"
	}
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global sequence number (monotonic)
	Session  string
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	GID      uint64 // goroutine id, tells parallel workers apart
	Name     string // "check", "file:lib/a.toml", "borrow_start"
	Detail   string
	Extra    map[string]string
}
