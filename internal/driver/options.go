package driver

import (
	"ownck/internal/borrowck"
)

// Options control one check run.
type Options struct {
	Check borrowck.Options
	// Jobs bounds CheckDir parallelism; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each file's bag (0 = unlimited).
	MaxDiagnostics int
	// Cache is consulted before verifying and updated after; nil disables it.
	Cache *DiskCache
	// Progress receives per-file events.
	Progress ProgressSink
	// Timings appends an OBS6001 diagnostic with per-stage durations.
	Timings bool
}
