package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matterhub/redline/internal/assist"
	"github.com/matterhub/redline/internal/doctext"
	"github.com/matterhub/redline/internal/report"
	"github.com/matterhub/redline/internal/revision"
)

func (s *Server) handleNarrative(w http.ResponseWriter, r *http.Request) {
	if s.narrator == nil {
		jsonError(w, "narrative generation not configured", http.StatusServiceUnavailable)
		return
	}

	docID := chi.URLParam(r, "docID")
	req, token, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	data, err := s.store.FetchItemContent(r.Context(), req.ItemID, token)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	changes := revision.FromBytes(data, s.extractOptions(req))
	sum := revision.Summarize(changes)

	// Nothing to narrate; skip the LLM round-trip.
	if len(changes) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"document_id": docID,
			"narrative":   "The document contains no tracked changes.",
			"summary":     sum,
		})
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "document.docx"
	}
	// Body text gives the model context; losing it is not fatal.
	var excerpt string
	if text, perr := (&doctext.DOCXParser{}).Parse(bytes.NewReader(data), filename); perr == nil {
		excerpt = text.Plain()
	}

	prompt := assist.BuildNarrativePrompt(docTitle(docID, req.Filename), changes, excerpt)

	ctx := r.Context()
	var narrative string
	var lastErr error
retry:
	for attempt := range assist.MaxRetries {
		narrative, lastErr = s.narrator.Narrate(ctx, prompt)
		if lastErr == nil || !assist.IsRetryable(lastErr) {
			break
		}
		s.log.Warn("retryable narrative error", "document_id", docID, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(assist.Backoff(attempt)):
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		}
	}
	if lastErr != nil {
		s.narrator.Stats.RecordFailure()
		jsonError(w, "narrative generation failed: "+lastErr.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"narrative":   narrative,
		"summary":     sum,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, token, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	format := req.Format
	if format == "" {
		format = "markdown"
	}
	if format != "markdown" && format != "html" {
		jsonError(w, "format must be markdown or html", http.StatusBadRequest)
		return
	}

	changes, err := s.extractor.Extract(r.Context(), docID, token, req.ItemID, s.extractOptions(req))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	sum := revision.Summarize(changes)

	md := report.Build(docTitle(docID, req.Filename), changes, sum)
	if format == "html" {
		html, err := report.HTML(md)
		if err != nil {
			jsonError(w, "failed to render report: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(md))
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	req, token, ok := s.decodeDocumentRequest(w, r)
	if !ok {
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = "document.docx"
	}
	parser, err := doctext.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := s.store.FetchItemContent(r.Context(), req.ItemID, token)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	text, err := parser.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"filename":    filename,
		"title":       text.Title,
		"paragraphs":  text.Paragraphs,
		"text":        text.Plain(),
	})
}
