package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleAudit lists recent extraction records for a document.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.trail == nil {
		jsonError(w, "audit trail not configured", http.StatusServiceUnavailable)
		return
	}

	docID := chi.URLParam(r, "docID")

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	entries, err := s.trail.Recent(r.Context(), docID, limit)
	if err != nil {
		jsonError(w, "failed to read audit trail: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"entries":     entries,
	})
}
