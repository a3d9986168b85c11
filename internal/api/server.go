package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matterhub/redline/internal/assist"
	"github.com/matterhub/redline/internal/audit"
	"github.com/matterhub/redline/internal/config"
	"github.com/matterhub/redline/internal/revision"
)

// ItemFetcher downloads document content from the store on behalf of a
// caller, forwarding the caller's own access token.
type ItemFetcher interface {
	FetchItemContent(ctx context.Context, itemID, accessToken string) ([]byte, error)
}

// Server is the HTTP API server for redline.
type Server struct {
	router    chi.Router
	extractor *revision.Extractor
	store     ItemFetcher
	narrator  *assist.NarrativeClient
	trail     *audit.Store
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. narrator and trail
// may be nil; endpoints that need them answer 503.
func NewServer(extractor *revision.Extractor, store ItemFetcher, narrator *assist.NarrativeClient, trail *audit.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		extractor: extractor,
		store:     store,
		narrator:  narrator,
		trail:     trail,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.RedlineAPIKey, s.log))

		r.Post("/api/documents/{docID}/changes", s.handleChanges)
		r.Post("/api/documents/{docID}/changes/summary", s.handleChangesSummary)
		r.Post("/api/documents/{docID}/narrative", s.handleNarrative)
		r.Post("/api/documents/{docID}/report", s.handleReport)
		r.Post("/api/documents/{docID}/text", s.handleText)
		r.Get("/api/documents/{docID}/audit", s.handleAudit)

		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/extract/batch", s.handleBatchExtract)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
