package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/adapter/http/handler"
	"github.com/iho/gobooks/internal/adapter/http/middleware"
	"github.com/iho/gobooks/internal/usecase"
)

// RouterConfig holds dependencies for the router.
// Optional middleware is skipped when its field is nil.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	InvoiceHandler     *handler.InvoiceHandler
	BudgetHandler      *handler.BudgetHandler
	DraftHandler       *handler.DraftHandler
	HealthHandler      *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	Authenticator    *middleware.Authenticator
	RateLimiter      *middleware.RateLimiter
	HTTPMetrics      *middleware.HTTPMetrics
	MetricsHandler   http.Handler

	Logger      zerolog.Logger
	Development bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.SecureHeaders(cfg.Development))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Authenticator != nil {
			r.Use(cfg.Authenticator.Require)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Chart of accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
		})

		// Previews only compute, so every role may call them.
		// Transactions and journal entries
		r.Route("/transactions", func(r chi.Router) {
			r.With(middleware.RequireSubmit).Post("/", cfg.TransactionHandler.Create)
			r.Post("/preview", cfg.TransactionHandler.Preview)
			r.Get("/{id}", cfg.TransactionHandler.Get)
		})

		// Invoices
		r.Route("/invoices", func(r chi.Router) {
			r.With(middleware.RequireSubmit).Post("/", cfg.InvoiceHandler.Create)
			r.Post("/preview", cfg.InvoiceHandler.Preview)
			r.Get("/{id}", cfg.InvoiceHandler.Get)
		})

		// Budgets
		r.Route("/budgets", func(r chi.Router) {
			r.With(middleware.RequireSubmit).Post("/", cfg.BudgetHandler.Create)
			r.Post("/preview", cfg.BudgetHandler.Preview)
			r.Get("/{id}", cfg.BudgetHandler.Get)
		})

		// Drafts
		r.Route("/drafts", func(r chi.Router) {
			r.Use(middleware.RequireSubmit)
			r.Post("/", cfg.DraftHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.DraftHandler.Get)
				r.Patch("/", cfg.DraftHandler.UpdateHeader)
				r.Delete("/", cfg.DraftHandler.Discard)
				r.Post("/submit", cfg.DraftHandler.Submit)
				r.Post("/lines", cfg.DraftHandler.AddLine)
				r.Patch("/lines/{lineID}", cfg.DraftHandler.UpdateLine)
				r.Delete("/lines/{lineID}", cfg.DraftHandler.RemoveLine)
				r.Post("/lines/{lineID}/commit", cfg.DraftHandler.CommitLine)
			})
		})
	})

	return r
}
