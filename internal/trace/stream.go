package trace

import (
	"io"
	"os"
	"sync"
)

// StreamTracer writes events immediately to an io.Writer.
type StreamTracer struct {
	mu      sync.Mutex
	w       io.Writer
	level   Level
	format  Format
	session string
}

func NewStreamTracer(w io.Writer, level Level, format Format, session string) *StreamTracer {
	return &StreamTracer{
		w:       w,
		level:   level,
		format:  format,
		session: session,
	}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || (!t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	if ev.Session == "" {
		ev.Session = t.session
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	// Best-effort write: a broken trace sink must not fail the check
	_, _ = t.w.Write(data) //nolint:errcheck
}

// Flush calls Flush or Sync on the writer when it has one.
func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch w := t.w.(type) {
	case interface{ Flush() error }:
		return w.Flush()
	case *os.File:
		if w == os.Stderr || w == os.Stdout {
			return nil
		}
		return w.Sync()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
// Standard streams are left open.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.w == os.Stderr || t.w == os.Stdout {
		return nil
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level {
	return t.level
}

func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}
