package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ownck/internal/borrowck"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[check]\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok, err := findManifest(nested)
	if err != nil || !ok {
		t.Fatalf("manifest not found: ok=%v err=%v", ok, err)
	}
	want, _ := filepath.Abs(filepath.Join(root, manifestName))
	if got != want {
		t.Fatalf("findManifest = %q, want %q", got, want)
	}

	// a file argument starts the search from its directory
	doc := filepath.Join(nested, "x.toml")
	if err := os.WriteFile(doc, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := findManifest(doc); !ok || got != want {
		t.Fatalf("findManifest(file) = %q, %v", got, ok)
	}
}

func TestApplyCheckOnlyDefinedKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[check]\nmax_violations = 5\n")
	m, err := loadManifestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := borrowck.DefaultOptions()
	m.applyCheck(&opts)
	if opts.MaxViolations != 5 {
		t.Fatalf("max_violations not applied: %+v", opts)
	}
	// unset keys keep their defaults even though the zero value is false
	if !opts.AllowPartialMoves || !opts.StrictBorrowScoping {
		t.Fatalf("defaults overwritten: %+v", opts)
	}

	path = writeManifest(t, dir, "[check]\nallow_partial_moves = false\n")
	if m, err = loadManifestFile(path); err != nil {
		t.Fatal(err)
	}
	opts = borrowck.DefaultOptions()
	m.applyCheck(&opts)
	if opts.AllowPartialMoves {
		t.Fatalf("allow_partial_moves = false not applied")
	}
}

func TestLoadManifestErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"syntax", "[check\n", "failed to parse TOML"},
		{"unknown key", "[check]\nallow_moves = true\n", "unknown keys: check.allow_moves"},
		{"negative cap", "[check]\nmax_violations = -1\n", "max_violations must be >= 0"},
		{"bad format", "[output]\nformat = \"xml\"\n", "[output].format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			_, err := loadManifestFile(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := writeDefaultManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	m, err := loadManifestFile(path)
	if err != nil {
		t.Fatalf("default manifest does not load: %v", err)
	}
	opts := borrowck.Options{}
	m.applyCheck(&opts)
	if opts != borrowck.DefaultOptions() {
		t.Fatalf("default manifest disagrees with DefaultOptions: %+v", opts)
	}
	if _, err := writeDefaultManifest(dir); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
}
