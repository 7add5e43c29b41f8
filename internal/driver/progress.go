package driver

import "time"

// Stage describes a phase of checking one file.
type Stage string

const (
	StageLoad   Stage = "load"
	StageVerify Stage = "verify"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	// StatusDone: the file was checked and is clean.
	StatusDone Status = "done"
	// StatusFailed: the file was checked and has violations.
	StatusFailed Status = "failed"
	// StatusError: the file could not be loaded.
	StatusError Status = "error"
	StatusCached Status = "cached"
)

// Event reports progress for a file.
type Event struct {
	File       string
	Stage      Stage
	Status     Status
	Err        error
	Elapsed    time.Duration
	Violations int
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: CheckDir emits from every worker.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
