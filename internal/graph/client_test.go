package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchItemContent_Success(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("docx bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, RateLimit{})
	defer c.Close()

	data, err := c.FetchItemContent(context.Background(), "item-123", "tok-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "docx bytes" {
		t.Errorf("expected body %q, got %q", "docx bytes", string(data))
	}
	if gotPath != "/drives/items/item-123/content" {
		t.Errorf("expected content path, got %q", gotPath)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("expected forwarded bearer token, got %q", gotAuth)
	}
}

func TestFetchItemContent_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, IsNotFound},
		{"unauthorized", http.StatusUnauthorized, IsUnauthorized},
		{"forbidden", http.StatusForbidden, IsUnauthorized},
		{"throttled", http.StatusTooManyRequests, IsTransient},
		{"server error", http.StatusInternalServerError, IsTransient},
		{"bad gateway", http.StatusBadGateway, IsTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, 0, RateLimit{})
			defer c.Close()

			_, err := c.FetchItemContent(context.Background(), "item-1", "tok")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("status %d misclassified: %v", tt.status, err)
			}
		})
	}
}

func TestFetchItemContent_ThrottleRecordsBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, RateLimit{})
	defer c.Close()

	_, err := c.FetchItemContent(context.Background(), "item-1", "tok")
	if !IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if c.limiter.Allow() {
		t.Error("expected limiter to hold requests after a 429")
	}
}

func TestFetchItemContent_ConnectionErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, 0, RateLimit{})
	defer c.Close()

	_, err := c.FetchItemContent(context.Background(), "item-1", "tok")
	if !IsTransient(err) {
		t.Fatalf("expected transient error for connection failure, got %v", err)
	}
}

func TestFetchItemContent_OversizedItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 16, RateLimit{})
	defer c.Close()

	_, err := c.FetchItemContent(context.Background(), "item-1", "tok")
	if err == nil {
		t.Fatal("expected error for oversized item")
	}
	if IsTransient(err) {
		t.Errorf("oversized item is not retryable, got %v", err)
	}
}

func TestFetchItemContent_EscapesItemID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0, RateLimit{})
	defer c.Close()

	if _, err := c.FetchItemContent(context.Background(), "item/../etc", "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/drives/items/item%2F..%2Fetc/content" {
		t.Errorf("expected escaped item id in path, got %q", gotPath)
	}
}
