package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/sheet"
	"github.com/JonMunkholm/bookimport/internal/web/views"
)

// multipartOverhead is allowed on top of the file size limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

// handleConsole renders the console page for the session.
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	runs, err := s.history.Recent(r.Context(), 20)
	if err != nil {
		logging.FromContext(r.Context()).Warn("history unavailable", "error", err)
		runs = nil
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Page(sess.Pipeline.Status(), runs).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render console", "error", err)
	}
}

// handleLoadFile reads the multipart "file" field into the session's
// pipeline. Validation problems are part of the returned status, not HTTP
// errors.
func (s *Server) handleLoadFile(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, r, fmt.Errorf("upload: %w", sheet.ErrTooLarge), http.StatusRequestEntityTooLarge)
			return
		}
		s.respondError(w, r, fmt.Errorf("parse upload form: %w", err), http.StatusBadRequest)
		return
	}

	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	status := sess.Pipeline.Load(r.Context(), header.Filename, file)
	if isHTMX(r) {
		s.respondStatus(w, r, status, views.FilePicker(true))
		return
	}
	s.respondStatus(w, r, status)
}

// handleSubmit sends the session's validated batch. A second send while
// one is pending, or a send without a batch, is a 409.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	status, err := sess.Pipeline.Submit(r.Context())
	if err != nil {
		if errors.Is(err, importer.ErrSubmitInFlight) || errors.Is(err, importer.ErrNoBatch) {
			s.respondError(w, r, err, http.StatusConflict)
			return
		}
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.respondStatus(w, r, status)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondStatus(w, r, sessionFrom(r.Context()).Pipeline.Status())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.respondStatus(w, r, sessionFrom(r.Context()).Pipeline.Reset())
}

// respondStatus writes the status panel, followed by any out-of-band
// fragments, for htmx and JSON otherwise.
func (s *Server) respondStatus(w http.ResponseWriter, r *http.Request, status importer.Status, extra ...templ.Component) {
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		for _, c := range append([]templ.Component{views.Status(status)}, extra...) {
			if err := c.Render(r.Context(), w); err != nil {
				logging.FromContext(r.Context()).Error("render status", "error", err)
				return
			}
		}
		return
	}
	writeJSON(w, status)
}
