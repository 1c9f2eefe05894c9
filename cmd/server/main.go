package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gobooks/internal/adapter/http"
	"github.com/iho/gobooks/internal/adapter/http/handler"
	"github.com/iho/gobooks/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gobooks/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobooks/internal/adapter/repository/redis"
	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/infrastructure/auth"
	"github.com/iho/gobooks/internal/infrastructure/config"
	"github.com/iho/gobooks/internal/infrastructure/eventpublisher"
	"github.com/iho/gobooks/internal/infrastructure/logger"
	"github.com/iho/gobooks/internal/infrastructure/metrics"
	"github.com/iho/gobooks/internal/infrastructure/postgres"
	"github.com/iho/gobooks/internal/infrastructure/redis"
	"github.com/iho/gobooks/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterIdleTimeout     = 10 * time.Minute
	outboxRetention        = 7 * 24 * time.Hour
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}

	appLogger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	defaultTaxRate, err := parseDefaultTaxRate(cfg.DefaultTaxRate)
	if err != nil {
		return err
	}
	logger.Info().
		Str("currency", cfg.Currency).
		Str("default_tax_rate", defaultTaxRate.String()).
		Str("event_sink", cfg.EventSink).
		Msg("bookkeeping settings")

	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	counterpartyRepo := postgresRepo.NewCounterpartyRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	invoiceRepo := postgresRepo.NewInvoiceRepository(pool)
	budgetRepo := postgresRepo.NewBudgetRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier(logger)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	draftStore := redisRepo.NewDraftStore(redisClient)

	// Use cases
	gate := domain.NewGate(accountRepo, counterpartyRepo)
	submitter := usecase.NewSubmitter(txManager, outboxRepo, retrier, m, logger)
	accountUC := usecase.NewAccountUseCase(accountRepo)
	transactionUC := usecase.NewTransactionUseCase(gate, transactionRepo, idGen, submitter)
	invoiceUC := usecase.NewInvoiceUseCase(gate, invoiceRepo, idGen, submitter, defaultTaxRate)
	budgetUC := usecase.NewBudgetUseCase(gate, budgetRepo, idGen, submitter)
	draftUC := usecase.NewDraftUseCase(draftStore, transactionUC, idGen, cfg.DraftTTL, cfg.SubmitLockTTL, logger)

	healthHandler := handler.NewHealthHandler(
		pool,
		handler.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnReject(m.RateLimitHits.Inc)

	var authenticator *middleware.Authenticator
	if cfg.AuthEnabled {
		authenticator = middleware.NewAuthenticator(auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration), m)
		logger.Info().Msg("authentication enabled")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		InvoiceHandler:     handler.NewInvoiceHandler(invoiceUC),
		BudgetHandler:      handler.NewBudgetHandler(budgetUC),
		DraftHandler:       handler.NewDraftHandler(draftUC),
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Authenticator:      authenticator,
		RateLimiter:        rateLimiter,
		HTTPMetrics:        middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		MetricsHandler:     promhttp.Handler(),
		Logger:             logger,
		Development:        cfg.LogFormat == "console",
	})

	sink, closeSink, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	outboxPublisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  sink,
		Recorder:   m,
		Logger:     logger.With().Str("component", "outbox").Logger(),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  outboxRetention,
	})

	server := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := outboxPublisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.CleanupLimiters(limiterIdleTimeout)
			}
		}
	})

	return g.Wait()
}

// newPublisher returns the outbox sink selected by EVENT_SINK and a func
// releasing its resources.
func newPublisher(cfg *config.Config, logger zerolog.Logger) (eventpublisher.Publisher, func(), error) {
	switch cfg.EventSink {
	case config.EventSinkAsynq:
		client, err := eventpublisher.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("publishing outbox events to asynq")
		return eventpublisher.NewAsynqPublisher(client), func() { _ = client.Close() }, nil
	case config.EventSinkLog, "":
		return eventpublisher.NewLogPublisher(logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown event sink %q", cfg.EventSink)
	}
}

func parseDefaultTaxRate(text string) (decimal.Decimal, error) {
	rate := domain.ParseTaxRate(text)
	if rate.Negative() {
		return decimal.Zero, fmt.Errorf("DEFAULT_TAX_RATE must not be negative, got %q", text)
	}
	return rate.Value(), nil
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
