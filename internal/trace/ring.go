package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory (circular buffer).
type RingTracer struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
	level    Level
	session  string
}

func NewRingTracer(capacity int, level Level, session string) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{
		events:   make([]Event, capacity),
		capacity: capacity,
		level:    level,
		session:  session,
	}
}

// Emit stores a copy of ev. At LevelError every scope is kept, since the
// ring is only read back when something went wrong.
func (t *RingTracer) Emit(ev *Event) {
	if ev == nil {
		return
	}
	if t.level != LevelError && !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stored := *ev
	if stored.Seq == 0 {
		stored.Seq = NextSeq()
	}
	if stored.Session == "" {
		stored.Session = t.session
	}
	t.events[t.head] = stored
	t.head = (t.head + 1) % t.capacity
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns a copy of all stored events in chronological order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.full {
		result := make([]Event, t.head)
		copy(result, t.events[:t.head])
		return result
	}
	result := make([]Event, t.capacity)
	copy(result, t.events[t.head:])
	copy(result[t.capacity-t.head:], t.events[:t.head])
	return result
}

// Dump writes all events to w in the specified format.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
