package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/bookimport/internal/history"
)

const maxHistoryLimit = 500

// handleHistory lists recent import runs. ?limit caps the result.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxHistoryLimit)
		}
	}

	runs, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, map[string]any{"runs": runs})
}
