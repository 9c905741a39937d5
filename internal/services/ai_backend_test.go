package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heraerp/hera-dev-sub007/internal/logger"
)

func testBackend(srv *httptest.Server, maxRetries int) *openAIBackend {
	return &openAIBackend{
		log:        logger.NewNop(),
		name:       "claude",
		baseURL:    srv.URL,
		apiKey:     "test-key",
		model:      "test-model",
		httpClient: srv.Client(),
		maxRetries: maxRetries,
	}
}

func TestBackendGenerateSchema(t *testing.T) {
	inner := `{"entity_type":"invoice","name":"Invoice","confidence":0.9,` +
		`"fields":[{"name":"amount","type":"number","required":true,"label":"Amount","confidence":0.9}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		body := map[string]any{
			"output": []map[string]any{{
				"type": "message",
				"role": "assistant",
				"content": []map[string]any{{
					"type": "output_text",
					"text": inner,
				}},
			}},
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	schema, err := testBackend(srv, 0).GenerateSchema(context.Background(), "track invoices", "invoice")
	if err != nil {
		t.Fatalf("GenerateSchema: %v", err)
	}
	if schema.EntityType != "invoice" || len(schema.Fields) != 1 {
		t.Fatalf("parsed schema: %+v", schema)
	}
	if !schema.Fields[0].AIGenerated {
		t.Fatalf("backend fields must be flagged ai generated")
	}
}

func TestBackendReturnsFinalAttemptError(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("overloaded"))
	}))
	defer srv.Close()

	_, err := testBackend(srv, 0).GenerateSchema(context.Background(), "track invoices", "")
	var backendErr *AIBackendError
	if !errors.As(err, &backendErr) {
		t.Fatalf("expected AIBackendError, got %v", err)
	}
	var httpErr *backendHTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error must carry the final attempt's http failure, got %v", err)
	}
	if httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want %d", httpErr.StatusCode, http.StatusServiceUnavailable)
	}
	if hits != 1 {
		t.Fatalf("attempts: got %d, want 1", hits)
	}
}

func TestBackendDoesNotRetryAuthFailure(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testBackend(srv, 2).GenerateSchema(context.Background(), "track invoices", "")
	var httpErr *backendHTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without retries, got %v", err)
	}
	if hits != 1 {
		t.Fatalf("auth failures must not be retried, got %d attempts", hits)
	}
}
