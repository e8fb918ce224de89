package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/bookimport/internal/catalog"
)

// maxFieldBody bounds the JSON body of the field endpoints.
const maxFieldBody = 64 << 10

type fieldRequest struct {
	Field string       `json:"field"`
	Value catalog.Cell `json:"value"`
	// Event is "blur" (default) or "input". Input re-checks a field only
	// while it is marked invalid.
	Event string `json:"event"`
}

type fieldResponse struct {
	OK        bool   `json:"ok"`
	Error     string `json:"error"`
	Rechecked bool   `json:"rechecked"`
}

// handleValidateField checks one entry-form field.
func (s *Server) handleValidateField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldBody)).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("decode field request: %w", err), http.StatusBadRequest)
		return
	}

	fields := sessionFrom(r.Context()).Fields
	if req.Event == "input" {
		msg, rechecked := fields.Input(req.Field, req.Value)
		writeJSON(w, fieldResponse{OK: !fields.Marked(req.Field), Error: msg, Rechecked: rechecked})
		return
	}
	msg, ok := fields.Blur(req.Field, req.Value)
	writeJSON(w, fieldResponse{OK: ok, Error: msg, Rechecked: true})
}

type recordResponse struct {
	OK     bool                 `json:"ok"`
	Focus  string               `json:"focus,omitempty"`
	Errors []catalog.FieldError `json:"errors,omitempty"`
}

// handleValidateRecord checks a whole entry-form record before it is
// sent. Focus names the first invalid field.
func (s *Server) handleValidateRecord(w http.ResponseWriter, r *http.Request) {
	var row catalog.Row
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFieldBody)).Decode(&row); err != nil {
		s.respondError(w, r, fmt.Errorf("decode record: %w", err), http.StatusBadRequest)
		return
	}

	fields := sessionFrom(r.Context()).Fields
	focus := fields.ValidateAll(row)
	writeJSON(w, recordResponse{OK: focus == "", Focus: focus, Errors: fields.Invalid()})
}
