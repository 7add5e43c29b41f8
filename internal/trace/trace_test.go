package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeStmt, false},
		{LevelDebug, ScopeStmt, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel("DETAIL"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDetail, Mode: ModeStream, Format: FormatNDJSON, Output: &buf, Session: "s-1"})
	if err != nil {
		t.Fatal(err)
	}
	span := Begin(tr, ScopeFile, "file:a.toml", 0)
	span.WithExtra("violations", "2").End("done")
	Begin(tr, ScopeStmt, "dropped", 0).End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Session != "s-1" || ev.Extra["violations"] != "2" || ev.Detail != "done" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestTextFormatSortsExtra(t *testing.T) {
	ev := &Event{
		Time:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Kind:  KindPoint,
		Scope: ScopeStmt,
		Name:  "move",
		Extra: map[string]string{"b": "2", "a": "1"},
	}
	got := string(FormatEvent(ev, FormatText))
	want := "03:04:05.000 [stmt] • move {a=1, b=2}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRingWraps(t *testing.T) {
	r := NewRingTracer(3, LevelDebug, "")
	for i := range 5 {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeStmt, Name: string(rune('a' + i))})
	}
	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	if snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("unexpected order: %s..%s", snap[0].Name, snap[2].Name)
	}
}

func TestNopWhenOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatalf("off tracer must be disabled")
	}
	if s := Begin(tr, ScopeDriver, "x", 0); s.ID() != 0 {
		t.Fatalf("expected empty span")
	}
}
