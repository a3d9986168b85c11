package api

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/matterhub/redline/internal/audit"
	"github.com/matterhub/redline/internal/revision"
)

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		jsonError(w, fmt.Sprintf("unsupported file type: %s (tracked changes live in .docx)", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	docID := r.FormValue("doc_id")
	if docID == "" {
		docID = contentHashHex(data)[:16]
	}

	start := time.Now()
	changes := revision.FromBytes(data, s.uploadOptions(r.FormValue("consolidate")))
	sum := revision.Summarize(changes)
	s.recordAudit(audit.NewEntry(docID, "", "upload", sum), start)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document_id": docID,
		"filename":    filename,
		"changes":     changes,
		"summary":     sum,
	})
}

func (s *Server) handleBatchExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	opts := s.uploadOptions(r.FormValue("consolidate"))

	// Extract files with bounded concurrency.
	type fileResult struct {
		idx     int
		payload map[string]any
	}
	results := make(chan fileResult, len(files))
	sem := make(chan struct{}, s.cfg.MaxConcurrentExtract)

	for i, fh := range files {
		sem <- struct{}{}
		go func(i int, fh *multipart.FileHeader) {
			defer func() { <-sem }()
			results <- fileResult{idx: i, payload: s.extractUploaded(fh, opts)}
		}(i, fh)
	}

	// Responses keep the upload order regardless of completion order.
	ordered := make([]map[string]any, len(files))
	for range files {
		res := <-results
		ordered[res.idx] = res.payload
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"results": ordered})
}

// extractUploaded processes one file of a batch. Failures report
// per-file; they never fail the whole batch.
func (s *Server) extractUploaded(fh *multipart.FileHeader, opts revision.Options) map[string]any {
	filename := sanitizeFilename(fh.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		return map[string]any{
			"filename": filename,
			"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
		}
	}

	f, err := fh.Open()
	if err != nil {
		return map[string]any{
			"filename": filename,
			"error":    "failed to open file",
		}
	}

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	f.Close()
	if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
		return map[string]any{
			"filename": filename,
			"error":    "file too large or read error",
		}
	}

	docID := contentHashHex(data)[:16]
	start := time.Now()
	changes := revision.FromBytes(data, opts)
	sum := revision.Summarize(changes)
	s.recordAudit(audit.NewEntry(docID, "", "upload", sum), start)

	return map[string]any{
		"filename":    filename,
		"document_id": docID,
		"changes":     changes,
		"summary":     sum,
	}
}

// uploadOptions parses the optional consolidate form override.
func (s *Server) uploadOptions(override string) revision.Options {
	opts := revision.Options{Consolidate: s.cfg.ConsolidateEdits}
	if override != "" {
		if b, err := strconv.ParseBool(override); err == nil {
			opts.Consolidate = b
		}
	}
	return opts
}

// contentHashHex computes SHA-256 of content and returns hex string.
func contentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
