package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short paths and cuts long absolute ones to the basename.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// ParsePathMode converts a flag value.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "", "auto":
		return PathModeAuto, true
	case "absolute":
		return PathModeAbsolute, true
	case "relative":
		return PathModeRelative, true
	case "basename":
		return PathModeBasename, true
	}
	return PathModeAuto, false
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string // для PathModeRelative
	Width     int    // максимальная ширина строки, 0 - не ограничено
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // обрезка вывода, не Bag
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
