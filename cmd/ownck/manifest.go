package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ownck/internal/borrowck"
)

const manifestName = "ownck.toml"

type projectManifest struct {
	Path   string
	Root   string
	Config manifestConfig
	meta   toml.MetaData
}

type manifestConfig struct {
	Check  checkConfig  `toml:"check"`
	Output outputConfig `toml:"output"`
}

type checkConfig struct {
	AllowPartialMoves     bool `toml:"allow_partial_moves"`
	StrictBorrowScoping   bool `toml:"strict_borrow_scoping"`
	AbortOnUnknownBinding bool `toml:"abort_on_unknown_binding"`
	MaxViolations         int  `toml:"max_violations"`
	Jobs                  int  `toml:"jobs"`
	Cache                 bool `toml:"cache"`
}

type outputConfig struct {
	Format string `toml:"format"`
	Paths  string `toml:"paths"`
	Notes  bool   `toml:"notes"`
}

const defaultManifest = `# ownck configuration
[check]
allow_partial_moves = true
strict_borrow_scoping = true
abort_on_unknown_binding = false
max_violations = 0
jobs = 0
cache = true

[output]
format = "pretty"   # pretty|json|short|sarif
paths = "auto"      # auto|absolute|relative|basename
notes = true
`

// findManifest walks up from startDir looking for ownck.toml.
func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, manifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadProjectManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := loadManifestFile(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func loadManifestFile(path string) (*projectManifest, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("check", "max_violations") && cfg.Check.MaxViolations < 0 {
		return nil, fmt.Errorf("%s: [check].max_violations must be >= 0", path)
	}
	if meta.IsDefined("output", "format") {
		if _, err := parseOutputFormat(cfg.Output.Format); err != nil {
			return nil, fmt.Errorf("%s: [output].format: %w", path, err)
		}
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// applyCheck overlays the keys present in [check] onto opts.
func (m *projectManifest) applyCheck(opts *borrowck.Options) {
	if m == nil {
		return
	}
	c := m.Config.Check
	if m.meta.IsDefined("check", "allow_partial_moves") {
		opts.AllowPartialMoves = c.AllowPartialMoves
	}
	if m.meta.IsDefined("check", "strict_borrow_scoping") {
		opts.StrictBorrowScoping = c.StrictBorrowScoping
	}
	if m.meta.IsDefined("check", "abort_on_unknown_binding") {
		opts.AbortOnUnknownBinding = c.AbortOnUnknownBinding
	}
	if m.meta.IsDefined("check", "max_violations") {
		opts.MaxViolations = c.MaxViolations
	}
}

func (m *projectManifest) isDefined(key ...string) bool {
	return m != nil && m.meta.IsDefined(key...)
}
