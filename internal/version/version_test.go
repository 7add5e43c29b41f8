package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestDescribe(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = ""
	BuildDate = ""
	if got := Describe(false); got != "ownck 1.2.3" {
		t.Fatalf("Describe = %q", got)
	}

	GitCommit = "abc123"
	BuildDate = "2024-01-15T10:30:00Z"
	want := "ownck 1.2.3 (abc123) built 2024-01-15T10:30:00Z"
	if got := Describe(false); got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}
}

func TestColoredWithoutTerminal(t *testing.T) {
	origVersion := Version
	origNoColor := color.NoColor
	t.Cleanup(func() {
		Version = origVersion
		color.NoColor = origNoColor
	})
	color.NoColor = true

	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123", "nightly"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
}
