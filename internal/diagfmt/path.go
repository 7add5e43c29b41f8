package diagfmt

import (
	"path/filepath"
	"strings"

	"ownck/internal/source"
)

// autoPathLimit is the length above which auto mode shows only the basename
// of an absolute path.
const autoPathLimit = 48

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return path
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return filepath.ToSlash(abs)
		}
	case PathModeRelative:
		if base == "" {
			break
		}
		if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAuto:
		if filepath.IsAbs(path) && len(path) > autoPathLimit {
			return filepath.Base(path)
		}
	}
	return filepath.ToSlash(path)
}

func formatLoc(loc source.Loc, mode PathMode, base string) string {
	if !loc.IsValid() {
		return loc.String()
	}
	loc.File = formatPath(loc.File, mode, base)
	return loc.String()
}
