package ui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"ownck/internal/driver"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short.toml", 20); got != "short.toml" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	got := truncate("a/very/long/path/to/some/document.toml", 12)
	if runewidth.StringWidth(got) > 12 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if got := truncate("документ.toml", 3); runewidth.StringWidth(got) > 3 {
		t.Fatalf("width overflow: %q", got)
	}
}

func TestApplyEventTracksStatus(t *testing.T) {
	files := []string{"a.toml", "b.toml"}
	m := NewProgressModel("check", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.toml", Stage: driver.StageVerify, Status: driver.StatusWorking})
	if m.items[0].status != "verifying" || m.items[0].finished {
		t.Fatalf("unexpected item state %+v", m.items[0])
	}
	m.applyEvent(driver.Event{File: "a.toml", Stage: driver.StageVerify, Status: driver.StatusFailed, Violations: 2})
	m.applyEvent(driver.Event{File: "b.toml", Stage: driver.StageVerify, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "unknown.toml", Stage: driver.StageLoad, Status: driver.StatusError})

	finished, failed := m.counts()
	if finished != 2 || failed != 1 {
		t.Fatalf("counts = %d/%d, want 2/1", finished, failed)
	}
	if p := m.percent(); p != 1.0 {
		t.Fatalf("percent = %v, want 1", p)
	}
	view := m.View()
	if !strings.Contains(view, "a.toml [2]") || !strings.Contains(view, "cached") {
		t.Fatalf("view misses file state:\n%s", view)
	}
}

func TestPercentCountsStages(t *testing.T) {
	m := NewProgressModel("check", []string{"a.toml", "b.toml"}, nil).(*progressModel)
	if m.percent() != 0 {
		t.Fatalf("queued files must not count")
	}
	m.applyEvent(driver.Event{File: "a.toml", Stage: driver.StageLoad, Status: driver.StatusWorking})
	if got := m.percent(); got <= 0 || got >= 0.5 {
		t.Fatalf("unexpected percent %v", got)
	}
}
