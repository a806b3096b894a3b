package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client := NewClient(Config{
		BaseURL:  baseURL,
		Email:    "dev@example.com",
		APIToken: "token",
		Timeout:  5 * time.Second,
	})
	client.retryBase = time.Millisecond
	return client
}

func TestClient_BasicAuth(t *testing.T) {
	var sawAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, token, ok := r.BasicAuth()
		if ok && email == "dev@example.com" && token == "token" {
			sawAuth.Store(true)
		}
		json.NewEncoder(w).Encode([]StatusDTO{})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	if _, err := client.GetStatuses(context.Background()); err != nil {
		t.Fatalf("GetStatuses failed: %v", err)
	}
	if !sawAuth.Load() {
		t.Error("request did not carry basic auth credentials")
	}
}

func TestClient_BearerAuth(t *testing.T) {
	var sawAuth atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer pat-secret" {
			sawAuth.Store(true)
		}
		json.NewEncoder(w).Encode([]StatusDTO{})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, PersonalToken: "pat-secret"})
	client.retryBase = time.Millisecond
	if _, err := client.GetStatuses(context.Background()); err != nil {
		t.Fatalf("GetStatuses failed: %v", err)
	}
	if !sawAuth.Load() {
		t.Error("request did not carry the personal access token")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"cloud credentials", Config{BaseURL: "https://x.atlassian.net", Email: "dev@example.com", APIToken: "token"}, false},
		{"personal access token only", Config{BaseURL: "https://jira.internal", PersonalToken: "pat"}, false},
		{"missing base url", Config{Email: "dev@example.com", APIToken: "token"}, true},
		{"incomplete cloud credentials", Config{BaseURL: "https://x.atlassian.net", Email: "dev@example.com"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_RetriesRateLimitAndServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			json.NewEncoder(w).Encode(SearchResponse{})
		}
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	if _, err := client.SearchIssues(context.Background(), "project = X", 0, 50, []string{"summary"}, ""); err != nil {
		t.Fatalf("SearchIssues failed after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_AuthErrorIsFatal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetStatuses(context.Background())
	if err == nil || !strings.Contains(err.Error(), "authentication") {
		t.Fatalf("expected an authentication error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("authentication errors must not be retried, got %d attempts", calls.Load())
	}
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.GetStatuses(context.Background())
	if err == nil {
		t.Fatal("expected an error once retries are exhausted")
	}
	if calls.Load() != int32(maxRetries)+1 {
		t.Errorf("expected %d attempts, got %d", maxRetries+1, calls.Load())
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	// Force the retry wait to outlast the context.
	client.retryBase = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.GetStatuses(ctx)
	if err == nil || ctx.Err() == nil {
		t.Fatalf("expected cancellation during retry wait, got %v", err)
	}
}
