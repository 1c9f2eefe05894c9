package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)

	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/invoices", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if !strings.Contains(logs.String(), "panic recovered") || !strings.Contains(logs.String(), "boom") {
		t.Fatalf("expected panic to be logged, got %s", logs.String())
	}
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		status int
		key    string
		want   []string
	}{
		{"accepted", http.StatusAccepted, "", []string{`"status":202`, `"level":"info"`, `"actor":"system"`, `"component":"http"`}},
		{"client error", http.StatusUnprocessableEntity, "key-1", []string{`"status":422`, `"level":"warn"`, `"idempotency_key":"key-1"`}},
		{"server error", http.StatusInternalServerError, "", []string{`"status":500`, `"level":"error"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			mw := NewLoggingMiddleware(zerolog.New(&logs))

			handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions", nil)
			if tt.key != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.key)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			out := logs.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Fatalf("expected %s in log line: %s", want, out)
				}
			}
		})
	}
}

func TestLoggingMiddleware_ImplicitOK(t *testing.T) {
	var logs bytes.Buffer
	handler := NewLoggingMiddleware(zerolog.New(&logs)).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))

	if out := logs.String(); !strings.Contains(out, `"status":200`) || !strings.Contains(out, `"bytes":2`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers, got %v", rr.Header())
	}
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	handler := Recovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Fatalf("expected panic")
}
