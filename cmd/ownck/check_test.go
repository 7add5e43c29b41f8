package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const movedDoc = `
[[stmt]]
op = "let"
name = "x"
init = { shape = { kind = "scalar" } }

[[stmt]]
op = "move"
name = "x"

[[stmt]]
op = "read"
name = "x"
`

const cleanDoc = `
[[stmt]]
op = "let"
name = "s"
mut = true
init = { shape = { kind = "scalar" } }

[[stmt]]
op = "enter"

[[stmt]]
op = "borrow-mut"
name = "s"
handle = "r"

[[stmt]]
op = "exit"

[[stmt]]
op = "mutate"
name = "s"
`

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "ownck", SilenceErrors: true, SilenceUsage: true}
	registerPersistentFlags(root)
	check := &cobra.Command{Use: "check", Args: cobra.ExactArgs(1), RunE: runCheck}
	addCheckFlags(check)
	check.Flags().String("ui", "off", "")
	root.AddCommand(check)
	return root
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := newTestRoot()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"check", "--color", "off"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func docDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{"moved.toml": movedDoc, "clean.toml": cleanDoc} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestCheckShortOutput(t *testing.T) {
	dir := docDir(t)
	out, _, err := runCLI(t, "--format", "short", dir)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "error OWN3001 ") || !strings.Contains(lines[0], "moved.toml:3") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestCheckCleanFileSucceeds(t *testing.T) {
	dir := docDir(t)
	out, stderr, err := runCLI(t, filepath.Join(dir, "clean.toml"))
	if err != nil {
		t.Fatalf("unexpected error %v\n%s", err, stderr)
	}
	if out != "" {
		t.Fatalf("expected no diagnostics, got:\n%s", out)
	}
	if !strings.Contains(stderr, "checked 1 file(s): 0 violation(s)") {
		t.Fatalf("missing summary: %q", stderr)
	}
}

func TestCheckJSONOutput(t *testing.T) {
	dir := docDir(t)
	out, _, err := runCLI(t, "--format", "json", "--jobs", "2", dir)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected errCheckFailed, got %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if !strings.Contains(out, "OWN3001") {
		t.Fatalf("JSON misses the violation:\n%s", out)
	}
}

func TestManifestFormatAndFlagOverride(t *testing.T) {
	dir := docDir(t)
	writeManifest(t, dir, "[output]\nformat = \"short\"\n")

	out, _, _ := runCLI(t, dir)
	if !strings.HasPrefix(out, "error OWN3001") {
		t.Fatalf("manifest format not applied:\n%s", out)
	}

	out, _, _ = runCLI(t, "--format", "sarif", dir)
	if !strings.Contains(out, `"ruleId": "OWN3001"`) && !strings.Contains(out, `"ruleId":"OWN3001"`) {
		t.Fatalf("flag did not override manifest:\n%s", out)
	}
}

func TestCheckRejectsNonDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, path)
	if err == nil || errors.Is(err, errCheckFailed) || !strings.Contains(err.Error(), "not an IR document") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("expected error")
	}
}
