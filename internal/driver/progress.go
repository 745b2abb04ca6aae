package driver

import "time"

// Stage is the pipeline step an Event belongs to.
type Stage string

const (
	StageParse   Stage = "parse"
	StageIndex   Stage = "index"   // once per run, File is empty
	StageResolve Stage = "resolve" // per file, in parallel
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	// StatusError: the file was checked but has errors.
	StatusError Status = "error"
)

// Finished reports whether no further events follow for the file.
func (s Status) Finished() bool { return s == StatusDone || s == StatusError }

// Event is one progress step. Run-wide steps have an empty File; Elapsed is
// set on the final resolve event of a file.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Elapsed time.Duration
}

// ProgressSink receives events from resolve tasks concurrently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink blocks until the consumer (the TUI) takes the event; the
// consumer must drain Ch until it is closed.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
