// Package history keeps a log of finished import runs.
//
// Every file load and every submission produces one Run. Runs are kept in
// PostgreSQL when a database is configured and in a bounded in-memory ring
// otherwise.
package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bookimport/internal/importer"
)

// DefaultLimit caps Recent when the caller passes a non-positive limit.
const DefaultLimit = 50

// Run is one recorded load or submission.
type Run struct {
	ID         uuid.UUID            `json:"id"`
	Kind       importer.EventKind   `json:"kind"`
	FileName   string               `json:"file_name"`
	Rows       int                  `json:"rows"`
	State      importer.State       `json:"state"`
	Outcome    importer.OutcomeKind `json:"outcome,omitempty"`
	Created    int                  `json:"created"`
	Failed     int                  `json:"failed"`
	Message    string               `json:"message"`
	DurationMs int64                `json:"duration_ms"`
	At         time.Time            `json:"at"`
}

// Store persists runs. Recent returns the newest runs first.
type Store interface {
	Record(ctx context.Context, run Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// RunFromEvent converts a pipeline event into a run with a fresh ID.
func RunFromEvent(ev importer.Event) Run {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return Run{
		ID:         uuid.New(),
		Kind:       ev.Kind,
		FileName:   ev.FileName,
		Rows:       ev.Rows,
		State:      ev.State,
		Outcome:    ev.Outcome,
		Created:    ev.Created,
		Failed:     ev.Failed,
		Message:    ev.Message,
		DurationMs: ev.Duration.Milliseconds(),
		At:         at.UTC(),
	}
}

// Recorder writes pipeline events to a Store.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	timeout time.Duration
}

// NewRecorder returns an importer.Recorder backed by store.
func NewRecorder(store Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, logger: logger, timeout: 5 * time.Second}
}

// Record stores ev. A failed write is logged and otherwise ignored; the
// import itself has already finished.
func (r *Recorder) Record(ctx context.Context, ev importer.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	run := RunFromEvent(ev)
	if err := r.store.Record(ctx, run); err != nil {
		r.logger.Error("failed to record import run",
			"run_id", run.ID,
			"kind", run.Kind,
			"file", run.FileName,
			"error", err,
		)
	}
}

var _ importer.Recorder = (*Recorder)(nil)
