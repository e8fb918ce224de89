package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request and session IDs; the client only sees the
// mapped user message, rendered as an htmx fragment or as JSON.

import (
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/bookimport/internal/importer"
	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/web/views"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := importer.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		// htmx only swaps 2xx answers by default; retarget the alert
		// into the status panel instead of dropping it.
		w.Header().Set("HX-Retarget", "#"+views.StatusID)
		w.Header().Set("HX-Reswap", "afterbegin")
		w.WriteHeader(http.StatusOK)
		_ = views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	writeJSONStatus(w, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
