package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/submit"
)

// Load messages.
const (
	MsgLoading    = "Leyendo archivo..."
	MsgEmptySheet = "La hoja seleccionada está vacía."
	MsgReadError  = "Error al leer archivo: "
)

// DefaultReloadAfter is the pause before the page reloads after a fully
// successful submission.
const DefaultReloadAfter = 900 * time.Millisecond

// Decoder turns an uploaded file into raw header/value rows.
type Decoder interface {
	Decode(ctx context.Context, fileName string, r io.Reader) ([]catalog.RawRow, error)
}

// Options wires a Pipeline. Decoder and Submitter are required.
type Options struct {
	Decoder     Decoder
	Validator   *catalog.Validator
	Submitter   submit.Submitter
	Limiter     *Limiter
	Recorder    Recorder
	Logger      *slog.Logger
	ReloadAfter time.Duration
}

// Pipeline is the import flow of one user session.
type Pipeline struct {
	decoder     Decoder
	validator   *catalog.Validator
	submitter   submit.Submitter
	limiter     *Limiter
	recorder    Recorder
	logger      *slog.Logger
	reloadAfter time.Duration

	mu     sync.Mutex
	batch  Batch
	status Status
	// gen changes on every Load and Reset. Results of work started under
	// an older generation are discarded.
	gen uint64
}

// NewPipeline returns an idle pipeline.
func NewPipeline(opts Options) *Pipeline {
	p := &Pipeline{
		decoder:     opts.Decoder,
		validator:   opts.Validator,
		submitter:   opts.Submitter,
		limiter:     opts.Limiter,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		reloadAfter: opts.ReloadAfter,
		status:      idleStatus(),
	}
	if p.validator == nil {
		p.validator = catalog.NewBulkValidator(false)
	}
	if p.limiter == nil {
		p.limiter = NewLimiter(0, 0)
	}
	if p.recorder == nil {
		p.recorder = Recorders{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.reloadAfter <= 0 {
		p.reloadAfter = DefaultReloadAfter
	}
	return p
}

// Status returns the current snapshot.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Reset abandons the current batch and returns to idle.
func (p *Pipeline) Reset() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.batch.Clear()
	p.status = idleStatus()
	return p.status
}

// Load replaces the current batch with the rows of a new file. Selecting a
// file always abandons whatever state came before, including a pending
// submission whose answer will then be ignored.
func (p *Pipeline) Load(ctx context.Context, fileName string, r io.Reader) Status {
	start := time.Now()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.batch.Clear()
	p.status = Status{State: StateFileLoading, Tone: ToneInfo, Message: MsgLoading, FileName: fileName}
	p.mu.Unlock()

	status, rows := p.load(ctx, fileName, r)

	p.mu.Lock()
	current := gen == p.gen
	if current {
		if status.State == StateReadyToSubmit {
			p.batch.Set(rows)
		}
		p.status = status
	}
	p.mu.Unlock()

	p.logger.Info("import file loaded",
		"file", fileName,
		"rows", status.Rows,
		"state", status.State,
		"failures", len(status.Failures),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	p.recorder.Record(ctx, Event{
		Kind:     EventLoad,
		FileName: fileName,
		Rows:     status.Rows,
		State:    status.State,
		Message:  status.Message,
		Duration: time.Since(start),
		At:       start,
	})

	if !current {
		return p.Status()
	}
	return status
}

func (p *Pipeline) load(ctx context.Context, fileName string, r io.Reader) (Status, []catalog.Row) {
	failed := func(msg string) Status {
		return Status{State: StateIdle, Tone: ToneDanger, Message: msg, FileName: fileName}
	}

	if err := p.limiter.Acquire(ctx); err != nil {
		p.logger.Warn("decode slot unavailable", "file", fileName, "error", err)
		return failed(MsgReadError + MapError(err).Message), nil
	}
	raws, err := p.decoder.Decode(ctx, fileName, r)
	p.limiter.Release()
	if err != nil {
		p.logger.Warn("decode failed", "file", fileName, "error", err)
		return failed(MsgReadError + MapError(err).Message), nil
	}

	rows, err := catalog.NormalizeAll(raws)
	if errors.Is(err, catalog.ErrEmptySheet) {
		return failed(MsgEmptySheet), nil
	}
	if err != nil {
		return failed(MsgReadError + MapError(err).Message), nil
	}

	var failures []RowFailure
	var lines []string
	for _, row := range rows {
		res := p.validator.ValidateRow(row)
		if res.Valid {
			continue
		}
		failures = append(failures, RowFailure{Line: row.Line, Errors: res.FieldErrors()})
		lines = append(lines, fmt.Sprintf("Fila %d: %s", row.Line, res.Summary()))
	}

	if len(failures) > 0 {
		return Status{
			State:    StateRowValidationFailed,
			Tone:     ToneDanger,
			Message:  strings.Join(lines, "\n"),
			FileName: fileName,
			Rows:     len(rows),
			Failures: failures,
		}, nil
	}

	return Status{
		State:     StateReadyToSubmit,
		Tone:      ToneSuccess,
		Message:   fmt.Sprintf("Validación OK: %d filas detectadas. Puede presionar Enviar.", len(rows)),
		FileName:  fileName,
		Rows:      len(rows),
		CanSubmit: true,
	}, rows
}

// Submit sends the current batch once. It fails with ErrSubmitInFlight
// while another submission of the batch is pending and with ErrNoBatch
// when nothing valid is loaded.
func (p *Pipeline) Submit(ctx context.Context) (Status, error) {
	start := time.Now()

	p.mu.Lock()
	switch p.status.State {
	case StateSubmitting:
		st := p.status
		p.mu.Unlock()
		return st, ErrSubmitInFlight
	case StateReadyToSubmit, StateSubmitFailed:
	default:
		st := p.status
		p.mu.Unlock()
		return st, ErrNoBatch
	}
	if !p.batch.Ready() {
		st := p.status
		p.mu.Unlock()
		return st, ErrNoBatch
	}
	gen := p.gen
	rows := p.batch.Rows()
	fileName := p.status.FileName
	p.status = Status{
		State:    StateSubmitting,
		Tone:     ToneInfo,
		Message:  MsgSubmitting,
		FileName: fileName,
		Rows:     len(rows),
	}
	p.mu.Unlock()

	reply, err := p.submitter.Submit(ctx, rows)
	if err != nil {
		p.logger.Warn("submission failed", "file", fileName, "rows", len(rows), "error", err)
	}
	out := Reconcile(reply, err)
	status := p.statusFor(out, fileName, len(rows))

	p.logger.Info("import submitted",
		"file", fileName,
		"rows", len(rows),
		"outcome", out.Kind,
		"created", out.Created,
		"failed", out.Failed,
		"status_code", out.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	p.recorder.Record(ctx, Event{
		Kind:     EventSubmit,
		FileName: fileName,
		Rows:     len(rows),
		State:    status.State,
		Outcome:  out.Kind,
		Created:  out.Created,
		Failed:   out.Failed,
		Message:  out.Message,
		Duration: time.Since(start),
		At:       start,
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.logger.Info("submission answer ignored, a new file was selected", "file", fileName)
		return p.status, nil
	}
	if !out.KeepsBatch() {
		p.batch.Clear()
	}
	p.status = status
	return status, nil
}

func (p *Pipeline) statusFor(out Outcome, fileName string, rows int) Status {
	st := Status{
		Message:      out.Message,
		FileName:     fileName,
		Rows:         rows,
		Created:      out.Created,
		Failed:       out.Failed,
		ServerErrors: out.RowErrors,
	}
	switch out.Kind {
	case OutcomeSucceeded:
		st.State = StateSubmitSucceeded
		st.Tone = ToneSuccess
		st.ReloadAfterMS = p.reloadAfter.Milliseconds()
	case OutcomePartial:
		st.State = StateSubmitPartialFailure
		st.Tone = ToneDanger
	case OutcomeRejected:
		st.State = StateSubmitFailed
		st.Tone = ToneDanger
	default:
		st.State = StateSubmitFailed
		st.Tone = ToneDanger
		st.CanSubmit = true
	}
	return st
}
