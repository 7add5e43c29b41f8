package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the ownck CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with major/minor/patch highlighted.
// Pre-release and build suffixes are left plain.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Describe returns the full one-line version banner.
func Describe(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ownck %s", v)
	if GitCommit != "" {
		fmt.Fprintf(&b, " (%s)", GitCommit)
	}
	if BuildDate != "" {
		fmt.Fprintf(&b, " built %s", BuildDate)
	}
	return b.String()
}
