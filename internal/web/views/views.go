// Package views renders the import console HTML with templ components.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/bookimport/internal/history"
	"github.com/JonMunkholm/bookimport/internal/importer"
)

// StatusID is the element the status fragment replaces.
const StatusID = "import-status"

// FormID is the file picker form.
const FormID = "import-form"

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

func esc(s string) string { return templ.EscapeString(s) }

// Page is the full console: file picker, send and reset buttons, the
// status panel and the recent history.
func Page(status importer.Status, runs []history.Run) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Carga masiva de fichas</title>
<script src="`+htmxSrc+`"></script>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;max-width:60rem}
.alert{padding:.75rem 1rem;border-radius:.25rem;white-space:pre-line;margin:1rem 0}
.alert-info{background:#e7f1ff}.alert-success{background:#e6f4ea}.alert-danger{background:#fdecea}
table{border-collapse:collapse;width:100%}td,th{border-bottom:1px solid #ddd;padding:.25rem .5rem;text-align:left}
</style>
</head>
<body>
<h1>Carga masiva de fichas</h1>
`); err != nil {
			return err
		}
		if err := FilePicker(false).Render(ctx, w); err != nil {
			return err
		}
		if err := Status(status).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<h2>Historial</h2>\n"); err != nil {
			return err
		}
		if err := History(runs).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// FilePicker renders the file selection form. Load responses send it again
// out of band so the input is emptied after every load and picking the
// same file again still fires change.
func FilePicker(outOfBand bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		oob := ""
		if outOfBand {
			oob = ` hx-swap-oob="true"`
		}
		_, err := fmt.Fprintf(w, `<form id="%s" hx-post="/api/import/file" hx-encoding="multipart/form-data" hx-target="#%s" hx-swap="outerHTML" hx-trigger="change"%s>
<input type="file" name="file" accept=".xlsx,.xlsm,.csv">
</form>
`, FormID, StatusID, oob)
		return err
	})
}

// Status renders the status panel with its action buttons. After a full
// success the panel schedules a page reload after the configured delay.
func Status(st importer.Status) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="%s" data-state="%s">`+"\n", StatusID, esc(string(st.State)))

		if st.Message != "" {
			fmt.Fprintf(&b, `<div class="alert alert-%s" role="status">%s</div>`+"\n", esc(string(st.Tone)), esc(st.Message))
		}
		if st.FileName != "" {
			fmt.Fprintf(&b, "<p>Archivo: <strong>%s</strong> (%d filas)</p>\n", esc(st.FileName), st.Rows)
		}

		disabled := ""
		if !st.CanSubmit {
			disabled = " disabled"
		}
		fmt.Fprintf(&b, `<button type="button" hx-post="/api/import/submit" hx-target="#%s" hx-swap="outerHTML" hx-disabled-elt="this"%s>Enviar</button>`+"\n", StatusID, disabled)
		fmt.Fprintf(&b, `<button type="button" hx-post="/api/import/reset" hx-target="#%s" hx-swap="outerHTML">Limpiar</button>`+"\n", StatusID)

		if d := st.ReloadAfter(); d > 0 {
			fmt.Fprintf(&b, `<div hx-get="/" hx-trigger="load delay:%dms" hx-select="body" hx-target="body" hx-swap="outerHTML"></div>`+"\n", d.Milliseconds())
		}

		b.WriteString("</section>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// History lists recent import runs, newest first.
func History(runs []history.Run) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if len(runs) == 0 {
			b.WriteString("<p>Sin cargas registradas.</p>\n")
			_, err := io.WriteString(w, b.String())
			return err
		}
		b.WriteString("<table>\n<thead><tr><th>Fecha</th><th>Archivo</th><th>Filas</th><th>Estado</th><th>Creados</th><th>Fallidos</th></tr></thead>\n<tbody>\n")
		for _, run := range runs {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
				esc(run.At.Local().Format(time.DateTime)),
				esc(run.FileName),
				run.Rows,
				esc(string(run.State)),
				run.Created,
				run.Failed,
			)
		}
		b.WriteString("</tbody>\n</table>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ErrorAlert is the fragment returned to htmx requests that failed.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="alert alert-danger" role="alert"><p>%s</p>`, esc(message))
		if action != "" {
			fmt.Fprintf(&b, "<p>%s</p>", esc(action))
		}
		fmt.Fprintf(&b, "<small>Código: %s</small></div>\n", esc(code))
		_, err := io.WriteString(w, b.String())
		return err
	})
}
