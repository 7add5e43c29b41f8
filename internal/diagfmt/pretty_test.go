package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"ownck/internal/diag"
	"ownck/internal/source"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.OwnUseOfMovedValue,
		source.Loc{File: "/home/user/project/ir/main.toml", Line: 3},
		"use of moved value `x`").
		WithNote(source.Loc{File: "/home/user/project/ir/main.toml", Line: 2}, "value moved here"))
	bag.Add(diag.NewError(diag.IRUnknownBinding,
		source.Loc{File: "/home/user/project/ir/main.toml", Line: 12, Col: 4},
		"cannot find binding `y` in this scope"))
	return bag
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{name: "Absolute path", mode: PathModeAbsolute, contains: "/home/user/project/ir/main.toml:3"},
		{name: "Relative path", mode: PathModeRelative, contains: "ir/main.toml:3"},
		{name: "Basename only", mode: PathModeBasename, contains: "main.toml:3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, sampleBag(), PrettyOpts{PathMode: tt.mode, BaseDir: "/home/user/project"})
			output := buf.String()
			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR") {
				t.Error("Expected ERROR in output")
			}
			if !strings.Contains(output, "OWN3001") {
				t.Error("Expected OWN3001 code in output")
			}
		})
	}
}

func TestPrettyAlignsAndShowsNotes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	want := "main.toml:3   : ERROR OWN3001: use of moved value `x`\n" +
		"    main.toml:2: note: value moved here\n" +
		"main.toml:12:4: ERROR IR1001: cannot find binding `y` in this scope\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyNoColorEscapes(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{Color: false})
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("unexpected ANSI escapes in output: %q", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes in output: %q", buf.String())
	}
}

func TestPrettyWidthTruncates(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{PathMode: PathModeBasename, Width: 40})
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if !strings.HasSuffix(line, "...") {
			t.Fatalf("expected truncated line, got %q", line)
		}
	}
}

func TestPrettyReportsDropped(t *testing.T) {
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.OwnUseOfMovedValue, source.Loc{File: "a", Line: 1}, "first"))
	bag.Add(diag.NewError(diag.OwnUseOfMovedValue, source.Loc{File: "a", Line: 2}, "second"))
	var buf bytes.Buffer
	Pretty(&buf, bag, PrettyOpts{})
	if !strings.Contains(buf.String(), "1 more diagnostic(s) not shown") {
		t.Fatalf("expected dropped summary, got:\n%s", buf.String())
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleBag(), false); err != nil {
		t.Fatal(err)
	}
	want := "error OWN3001 /home/user/project/ir/main.toml:3 use of moved value `x`\n" +
		"error IR1001 /home/user/project/ir/main.toml:12:4 cannot find binding `y` in this scope\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
