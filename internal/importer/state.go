package importer

import (
	"time"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/submit"
)

// State is a step of the import flow.
type State string

const (
	StateIdle                 State = "idle"
	StateFileLoading          State = "file_loading"
	StateRowValidationFailed  State = "row_validation_failed"
	StateReadyToSubmit        State = "ready_to_submit"
	StateSubmitting           State = "submitting"
	StateSubmitSucceeded      State = "submit_succeeded"
	StateSubmitPartialFailure State = "submit_partial_failure"
	StateSubmitFailed         State = "submit_failed"
)

// Tone selects how a status message is presented.
type Tone string

const (
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneDanger  Tone = "danger"
)

// RowFailure lists the broken fields of one spreadsheet row.
type RowFailure struct {
	Line   int                  `json:"line"`
	Errors []catalog.FieldError `json:"errors"`
}

// Status is a snapshot of the pipeline shown to the user.
type Status struct {
	State     State  `json:"state"`
	Tone      Tone   `json:"tone"`
	Message   string `json:"message"`
	FileName  string `json:"file_name,omitempty"`
	Rows      int    `json:"rows"`
	CanSubmit bool   `json:"can_submit"`

	Failures     []RowFailure      `json:"failures,omitempty"`
	ServerErrors []submit.RowError `json:"server_errors,omitempty"`
	Created      int               `json:"created"`
	Failed       int               `json:"failed"`

	// ReloadAfterMS is set on success: the page re-syncs with the server
	// after this many milliseconds.
	ReloadAfterMS int64 `json:"reload_after_ms,omitempty"`
}

// ReloadAfter returns the scheduled reload delay, zero when none.
func (s Status) ReloadAfter() time.Duration {
	return time.Duration(s.ReloadAfterMS) * time.Millisecond
}

func idleStatus() Status {
	return Status{State: StateIdle, Tone: ToneInfo}
}
