package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/auth"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
)

// Authenticator verifies bearer tokens and puts the caller in the request context.
type Authenticator struct {
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthenticator creates an Authenticator. m may be nil.
func NewAuthenticator(jwtManager *auth.JWTManager, m *metrics.Metrics) *Authenticator {
	return &Authenticator{jwtManager: jwtManager, metrics: m}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			a.fail("missing_token")
			reject(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := a.jwtManager.Verify(tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrExpiredToken) {
				a.fail("expired_token")
			} else {
				a.fail("invalid_token")
			}
			reject(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := domain.ContextWithUser(r.Context(), claims.User())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional extracts the caller if a valid token is present but never rejects.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokenString, ok := bearerToken(r); ok {
			if claims, err := a.jwtManager.Verify(tokenString); err == nil {
				r = r.WithContext(domain.ContextWithUser(r.Context(), claims.User()))
			}
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Authenticator) fail(reason string) {
	if a.metrics != nil {
		a.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
}

// RequireSubmit blocks mutating requests from callers whose role cannot
// submit documents. Anonymous requests pass; Require decides on those.
func RequireSubmit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isMutating(r.Method) {
			if user, ok := domain.UserFromContext(r.Context()); ok && !user.Role.CanSubmit() {
				reject(w, http.StatusForbidden, domain.ErrInsufficientRole.Error())
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
