package eventpublisher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second
	pruneEvery       = time.Hour
)

// Publisher hands one outbox event to a downstream sink.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Recorder counts publish outcomes.
type Recorder interface {
	EventPublished(ok bool)
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Recorder   Recorder // optional
	Logger     zerolog.Logger
	BatchSize  int
	Interval   time.Duration
	// Retention is how long published events are kept. Zero keeps them forever.
	Retention time.Duration
}

// EventPublisher relays the events written alongside submitted documents.
// A full batch is followed immediately by the next one; an outbox read
// failure backs off exponentially up to ten polling intervals.
type EventPublisher struct {
	cfg       Config
	now       func() time.Time
	lastPrune time.Time
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	return &EventPublisher{cfg: cfg, now: time.Now}
}

func (ep *EventPublisher) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = ep.cfg.Interval
	b.MaxInterval = 10 * ep.cfg.Interval
	b.MaxElapsedTime = 0
	return b
}

// Start relays events until ctx is cancelled and then returns ctx.Err().
func (ep *EventPublisher) Start(ctx context.Context) error {
	log := ep.cfg.Logger
	log.Info().Int("batch_size", ep.cfg.BatchSize).Dur("interval", ep.cfg.Interval).Msg("outbox relay started")

	failures := ep.newBackOff()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay stopped")
			return ctx.Err()
		case <-timer.C:
		}

		wait := ep.cfg.Interval
		fetched, err := ep.relayBatch(ctx)
		switch {
		case err != nil:
			wait = failures.NextBackOff()
			log.Error().Err(err).Dur("retry_in", wait).Msg("outbox read failed")
		case fetched == ep.cfg.BatchSize:
			failures.Reset()
			wait = 0
		default:
			failures.Reset()
		}
		timer.Reset(wait)
	}
}

// relayBatch publishes one batch of unpublished events and reports how many
// were fetched. A failed event stays unpublished for the next batch.
func (ep *EventPublisher) relayBatch(ctx context.Context) (int, error) {
	events, err := ep.cfg.OutboxRepo.GetUnpublished(ctx, ep.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	for _, event := range events {
		log := ep.cfg.Logger.With().
			Str("event_id", event.ID).
			Str("event_type", event.EventType).
			Str("document_id", event.AggregateID).
			Logger()

		if err := ep.cfg.Publisher.Publish(ctx, event); err != nil {
			ep.record(false)
			log.Error().Err(err).Msg("failed to publish event")
			continue
		}
		ep.record(true)

		if err := ep.cfg.OutboxRepo.MarkPublished(ctx, event.ID, ep.now()); err != nil {
			log.Error().Err(err).Msg("failed to mark event as published")
		}
	}

	ep.prune(ctx)
	return len(events), nil
}

func (ep *EventPublisher) prune(ctx context.Context) {
	if ep.cfg.Retention <= 0 {
		return
	}
	now := ep.now()
	if !ep.lastPrune.IsZero() && now.Sub(ep.lastPrune) < pruneEvery {
		return
	}

	if err := ep.cfg.OutboxRepo.DeletePublished(ctx, now.Add(-ep.cfg.Retention)); err != nil {
		ep.cfg.Logger.Warn().Err(err).Msg("failed to prune published events")
		return
	}
	ep.lastPrune = now
}

func (ep *EventPublisher) record(ok bool) {
	if ep.cfg.Recorder != nil {
		ep.cfg.Recorder.EventPublished(ok)
	}
}
