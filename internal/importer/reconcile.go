package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/bookimport/internal/submit"
)

// OutcomeKind classifies a submission attempt.
type OutcomeKind string

const (
	// OutcomeSucceeded: every row was created.
	OutcomeSucceeded OutcomeKind = "succeeded"
	// OutcomePartial: some rows were created and some failed.
	OutcomePartial OutcomeKind = "partial"
	// OutcomeRejected: the server refused the batch with an explanation.
	OutcomeRejected OutcomeKind = "rejected"
	// OutcomeTransport: nothing usable came back; the batch may be resent.
	OutcomeTransport OutcomeKind = "transport"
)

// Submission messages.
const (
	MsgSubmitting      = "Enviando..."
	MsgNetworkError    = "Error de red: no se pudo contactar al servidor."
	MsgInvalidResponse = "Respuesta no válida del servidor."
	MsgUnknownError    = "Error desconocido"
)

// Outcome is the reconciled result of one submission.
type Outcome struct {
	Kind       OutcomeKind
	Message    string
	Created    int
	Failed     int
	StatusCode int
	RowErrors  []submit.RowError
}

// KeepsBatch reports whether the batch survives this outcome.
func (o Outcome) KeepsBatch() bool {
	return o.Kind == OutcomeTransport
}

// Reconcile turns a submission result into what the user sees. It never
// treats an error or a non-JSON answer as success.
func Reconcile(reply *submit.Reply, err error) Outcome {
	if err != nil {
		if errors.Is(err, submit.ErrNotJSON) {
			return Outcome{Kind: OutcomeTransport, Message: MsgInvalidResponse}
		}
		return Outcome{Kind: OutcomeTransport, Message: MsgNetworkError}
	}
	if reply == nil {
		return Outcome{Kind: OutcomeTransport, Message: MsgNetworkError}
	}

	body := reply.Body
	rowErrs, isList := body.RowErrors()
	hasRows := isList && len(rowErrs) > 0

	if !reply.Success() {
		switch {
		case hasRows:
			return Outcome{Kind: OutcomeRejected, StatusCode: reply.StatusCode, RowErrors: rowErrs, Message: rowLines(rowErrs)}
		case body.Error != "":
			// A bare message carries no row or field detail; the batch
			// stays so it can be sent again.
			return Outcome{Kind: OutcomeTransport, StatusCode: reply.StatusCode, Message: body.Error}
		default:
			return Outcome{Kind: OutcomeTransport, StatusCode: reply.StatusCode, Message: fmt.Sprintf("Error: %d", reply.StatusCode)}
		}
	}

	if !body.OK {
		out := Outcome{Kind: OutcomeRejected, StatusCode: reply.StatusCode}
		switch {
		case hasRows:
			out.RowErrors = rowErrs
			out.Message = rowLines(rowErrs)
		case body.HasErrors():
			out.Message = body.ErrorsText()
		case body.Error != "":
			out.Message = body.Error
		default:
			out.Message = MsgUnknownError
		}
		return out
	}

	created := max(body.Created, 0)
	failed := max(body.Failed, 0)
	if failed > 0 {
		msg := fmt.Sprintf("Carga parcial. Creados: %d. Fallidos: %d\n", created, failed)
		if hasRows {
			msg += rowLines(rowErrs)
		}
		return Outcome{
			Kind:       OutcomePartial,
			StatusCode: reply.StatusCode,
			Created:    created,
			Failed:     failed,
			RowErrors:  rowErrs,
			Message:    msg,
		}
	}

	return Outcome{
		Kind:       OutcomeSucceeded,
		StatusCode: reply.StatusCode,
		Created:    created,
		Message:    fmt.Sprintf("Carga finalizada. Registros creados: %d.", created),
	}
}

// rowLines renders server row failures one per line.
func rowLines(errs []submit.RowError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = fmt.Sprintf("Fila %s: %s", e.Label(), e.Message())
	}
	return strings.Join(lines, "\n")
}
