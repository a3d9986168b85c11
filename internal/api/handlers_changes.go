package api

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matterhub/redline/internal/audit"
	"github.com/matterhub/redline/internal/graph"
	"github.com/matterhub/redline/internal/revision"
)

// documentRequest is the JSON body shared by the document endpoints.
// Filename and Format only matter to the endpoints that use them.
type documentRequest struct {
	ItemID      string `json:"item_id"`
	Consolidate *bool  `json:"consolidate,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Format      string `json:"format,omitempty"`
}

// decodeDocumentRequest reads the shared body and the caller's store
// token. On failure it has already written the error response.
func (s *Server) decodeDocumentRequest(w http.ResponseWriter, r *http.Request) (documentRequest, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req documentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return req, "", false
	}
	if req.ItemID == "" {
		jsonError(w, "item_id is required", http.StatusBadRequest)
		return req, "", false
	}
	token := r.Header.Get("X-Access-Token")
	if token == "" {
		jsonError(w, "X-Access-Token header is required", http.StatusBadRequest)
		return req, "", false
	}
	return req, token, true
}

// extractOptions applies a per-request consolidation override on top of
// the configured default.
func (s *Server) extractOptions(req documentRequest) revision.Options {
	opts := revision.Options{Consolidate: s.cfg.ConsolidateEdits}
	if req.Consolidate != nil {
		opts.Consolidate = *req.Consolidate
	}
	return opts
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, token, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	changes, err := s.extractor.Extract(r.Context(), docID, token, req.ItemID, s.extractOptions(req))
	if err != nil {
		s.recordAudit(audit.Entry{DocumentID: docID, ItemID: req.ItemID, Source: "graph", Status: "fetch_failed"}, start)
		s.writeStoreError(w, err)
		return
	}
	sum := revision.Summarize(changes)
	s.recordAudit(audit.NewEntry(docID, req.ItemID, "graph", sum), start)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"changes":     changes,
		"summary":     sum,
	})
}

func (s *Server) handleChangesSummary(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, token, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	changes, err := s.extractor.Extract(r.Context(), docID, token, req.ItemID, s.extractOptions(req))
	if err != nil {
		s.recordAudit(audit.Entry{DocumentID: docID, ItemID: req.ItemID, Source: "graph", Status: "fetch_failed"}, start)
		s.writeStoreError(w, err)
		return
	}
	sum := revision.Summarize(changes)
	s.recordAudit(audit.NewEntry(docID, req.ItemID, "graph", sum), start)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"summary":     sum,
	})
}

// writeStoreError maps document store failures onto response codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case graph.IsNotFound(err):
		jsonError(w, "document item not found", http.StatusNotFound)
	case graph.IsUnauthorized(err):
		jsonError(w, "access token rejected by document store", http.StatusUnauthorized)
	case graph.IsTransient(err):
		jsonError(w, "document store unavailable: "+err.Error(), http.StatusBadGateway)
	default:
		jsonError(w, "fetch failed: "+err.Error(), http.StatusBadGateway)
	}
}

// recordAudit writes an audit row without holding up or failing the
// request. It uses a fresh context so a cancelled request still leaves
// its trace.
func (s *Server) recordAudit(entry audit.Entry, start time.Time) {
	if s.trail == nil {
		return
	}
	entry.DurationMs = time.Since(start).Milliseconds()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.trail.Record(ctx, entry); err != nil {
		s.log.Warn("audit record failed", "document_id", entry.DocumentID, "error", err)
	}
}

// docTitle derives a display title from the optional filename.
func docTitle(docID, filename string) string {
	if filename == "" {
		return docID
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
