package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/bookimport/internal/history"
	"github.com/JonMunkholm/bookimport/internal/importer"
)

func TestStatus_EscapesAndDisables(t *testing.T) {
	var buf bytes.Buffer
	err := Status(importer.Status{
		State:   importer.StateRowValidationFailed,
		Tone:    importer.ToneDanger,
		Message: "Fila 2: titulo: <b>Campo obligatorio.</b>",
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, `id="import-status"`)
	assert.Contains(t, html, "&lt;b&gt;")
	assert.Contains(t, html, "alert-danger")
	assert.Contains(t, html, "disabled>Enviar")
	assert.NotContains(t, html, "delay:")
}

func TestStatus_ScheduledReload(t *testing.T) {
	var buf bytes.Buffer
	err := Status(importer.Status{
		State:         importer.StateSubmitSucceeded,
		Tone:          importer.ToneSuccess,
		Message:       "Carga finalizada. Registros creados: 2.",
		ReloadAfterMS: 900,
	}).Render(context.Background(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "load delay:900ms")
}

func TestStatus_CanSubmit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Status(importer.Status{State: importer.StateReadyToSubmit, CanSubmit: true}).Render(context.Background(), &buf))
	assert.NotContains(t, buf.String(), " disabled>")
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	runs := []history.Run{{FileName: "libros.xlsx", Rows: 3, State: importer.StateSubmitSucceeded, Created: 3, At: time.Now()}}
	require.NoError(t, Page(importer.Status{State: importer.StateIdle}, runs).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "libros.xlsx")
	assert.Contains(t, html, `hx-post="/api/import/file"`)
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("Falló", "Reintente", "ERR000").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), "Código: ERR000")
}

func TestFilePicker(t *testing.T) {
	var page, oob bytes.Buffer
	require.NoError(t, FilePicker(false).Render(context.Background(), &page))
	require.NoError(t, FilePicker(true).Render(context.Background(), &oob))

	assert.Contains(t, page.String(), `id="import-form"`)
	assert.NotContains(t, page.String(), "hx-swap-oob")
	assert.Contains(t, oob.String(), `id="import-form"`)
	assert.Contains(t, oob.String(), `hx-swap-oob="true"`)
	assert.Contains(t, oob.String(), `<input type="file" name="file"`)
}
