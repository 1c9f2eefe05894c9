package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/auth"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

func issueToken(t *testing.T, manager *auth.JWTManager, role domain.Role) string {
	t.Helper()

	token, err := manager.Generate(&domain.User{ID: "user-1", Email: "u@example.com", Role: role})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func TestAuthenticator_Require(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	authn := NewAuthenticator(manager, m)

	var seen *domain.User
	handler := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = domain.UserFromContext(r.Context())
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + issueToken(t, manager, domain.RoleAccountant), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus == http.StatusOK && (seen == nil || seen.ID != "user-1") {
				t.Fatalf("expected user in context, got %+v", seen)
			}
		})
	}

	if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("missing_token")); got != 2 {
		t.Fatalf("expected 2 missing_token failures, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues("invalid_token")); got != 1 {
		t.Fatalf("expected 1 invalid_token failure, got %v", got)
	}
}

func TestAuthenticator_Optional(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	authn := NewAuthenticator(manager, nil)

	var found bool
	handler := authn.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = domain.UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if found {
		t.Fatalf("invalid token must not yield a user")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, manager, domain.RoleViewOnly))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !found {
		t.Fatalf("expected user from valid token")
	}
}

func TestRequireSubmit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		method string
		user   *domain.User
		want   int
	}{
		{"view only read", http.MethodGet, &domain.User{Role: domain.RoleViewOnly}, http.StatusNoContent},
		{"view only write", http.MethodPost, &domain.User{Role: domain.RoleViewOnly}, http.StatusForbidden},
		{"view only delete", http.MethodDelete, &domain.User{Role: domain.RoleViewOnly}, http.StatusForbidden},
		{"accountant write", http.MethodPatch, &domain.User{Role: domain.RoleAccountant}, http.StatusNoContent},
		{"anonymous write", http.MethodPost, nil, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/transactions", nil)
			if tt.user != nil {
				req = req.WithContext(domain.ContextWithUser(req.Context(), tt.user))
			}
			rr := httptest.NewRecorder()

			RequireSubmit(next).ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}
