package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Graph connection
	GraphBaseURL           string
	GraphRequestsPerSecond int
	GraphBurst             int
	MaxFetchBytes          int64

	// Auth
	RedlineAPIKey string

	// Claude narration
	AnthropicAPIKey string
	AnthropicModel  string

	// Extraction behavior
	ConsolidateEdits     bool
	MaxConcurrentExtract int

	// Upload limits
	MaxUploadBytes int64

	// Audit trail
	AuditDBPath    string
	AuditRetention time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		GraphBaseURL:           envOr("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		GraphRequestsPerSecond: envInt("GRAPH_REQUESTS_PER_SECOND", 8),
		GraphBurst:             envInt("GRAPH_BURST", 10),
		MaxFetchBytes:          envInt64("MAX_FETCH_BYTES", 104857600), // 100MB

		RedlineAPIKey: os.Getenv("REDLINE_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		ConsolidateEdits:     envBool("CONSOLIDATE_EDITS", true),
		MaxConcurrentExtract: envInt("MAX_CONCURRENT_EXTRACT", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		AuditDBPath:    envOr("AUDIT_DB_PATH", "redline-audit.db"),
		AuditRetention: envDuration("AUDIT_RETENTION", 2160*time.Hour), // 90 days
	}

	if cfg.GraphRequestsPerSecond <= 0 {
		cfg.GraphRequestsPerSecond = 8
	}
	if cfg.GraphBurst <= 0 {
		cfg.GraphBurst = 10
	}
	if cfg.MaxFetchBytes <= 0 {
		cfg.MaxFetchBytes = 104857600
	}
	if cfg.MaxConcurrentExtract <= 0 {
		cfg.MaxConcurrentExtract = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.AuditRetention <= 0 {
		cfg.AuditRetention = 2160 * time.Hour
	}

	return cfg
}

// Validate checks the settings the service cannot run without.
// ANTHROPIC_API_KEY is not among them: without it the service still
// extracts and summarizes, only the narrative endpoints return 503.
func (c Config) Validate() error {
	if c.RedlineAPIKey == "" {
		return fmt.Errorf("REDLINE_API_KEY is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
