package importer

import (
	"context"
	"time"
)

// EventKind tells loads and submissions apart.
type EventKind string

const (
	EventLoad   EventKind = "load"
	EventSubmit EventKind = "submit"
)

// Event describes one finished load or submission.
type Event struct {
	Kind     EventKind
	FileName string
	Rows     int
	State    State
	Outcome  OutcomeKind
	Created  int
	Failed   int
	Message  string
	Duration time.Duration
	At       time.Time
}

// Recorder observes pipeline events. Implementations must not block for
// long; they run on the request path.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Recorders fans an event out to several recorders.
type Recorders []Recorder

func (rs Recorders) Record(ctx context.Context, ev Event) {
	for _, r := range rs {
		if r != nil {
			r.Record(ctx, ev)
		}
	}
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, ev Event)

func (f RecorderFunc) Record(ctx context.Context, ev Event) { f(ctx, ev) }
