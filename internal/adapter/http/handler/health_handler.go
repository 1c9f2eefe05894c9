package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 3 * time.Second

// Pinger is a dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler reports liveness and readiness. Readiness requires both the
// document store and the draft store to answer.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(postgres, redis Pinger) *HealthHandler {
	return &HealthHandler{deps: map[string]Pinger{
		"postgres": postgres,
		"redis":    redis,
	}}
}

// Liveness returns 200 while the process is serving.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings every dependency concurrently and lists each one's state.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = map[string]string{"status": "ready"}
	)

	g, gctx := errgroup.WithContext(ctx)
	for name, dep := range h.deps {
		g.Go(func() error {
			err := dep.Ping(gctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report[name] = err.Error()
				report["status"] = "unavailable"
				return nil
			}
			report[name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if report["status"] != "ready" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}
