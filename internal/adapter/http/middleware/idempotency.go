package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the idempotency store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKeyLen  = 255
)

// storedResponse is what a successful keyed request leaves behind.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
}

// IdempotencyMiddleware replays the response of a mutating request sent
// again with the same Idempotency-Key by the same actor to the same route.
// Only 2xx responses are kept; any other outcome releases the key.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// scopedKey keeps two actors, or two routes, from sharing a key.
func scopedKey(r *http.Request, key string) string {
	sum := sha256.Sum256([]byte(domain.ActorID(r.Context()) + "\n" + r.Method + " " + r.URL.Path + "\n" + key))
	return hex.EncodeToString(sum[:])
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(IdempotencyKeyHeader)
		if !isMutating(r.Method) || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			reject(w, http.StatusBadRequest, "idempotency key too long")
			return
		}

		storeKey := scopedKey(r, key)
		claimed, stored, err := m.store.Claim(r.Context(), storeKey, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed")
			reject(w, http.StatusServiceUnavailable, "idempotency check failed")
			return
		}

		if !claimed {
			m.replay(w, key, stored)
			return
		}

		ctx := context.WithoutCancel(r.Context())
		rec := &capturingWriter{ResponseWriter: w, status: http.StatusOK}

		// The key is released unless a 2xx response is stored, including
		// when the handler panics and Recovery answers further up.
		succeeded := false
		defer func() {
			if succeeded {
				return
			}
			if err := m.store.Release(ctx, storeKey); err != nil {
				m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}()

		next.ServeHTTP(rec, r)

		if rec.status < 200 || rec.status >= 300 {
			return
		}
		succeeded = true

		payload, err := json.Marshal(storedResponse{
			Status:      rec.status,
			ContentType: rec.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		})
		if err == nil {
			err = m.store.Complete(ctx, storeKey, payload, m.ttl)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("idempotency_key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, key string, stored []byte) {
	if stored == nil {
		reject(w, http.StatusConflict, "a request with this idempotency key is in progress")
		return
	}

	var resp storedResponse
	if err := json.Unmarshal(stored, &resp); err != nil {
		m.logger.Error().Err(err).Str("idempotency_key", key).Msg("unreadable idempotent response")
		reject(w, http.StatusInternalServerError, "stored response is unreadable")
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// capturingWriter tees the response so it can be stored after the handler
// returns.
type capturingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *capturingWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *capturingWriter) Write(b []byte) (int, error) {
	c.wroteHeader = true
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
