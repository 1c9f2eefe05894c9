package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
)

// Submitter runs the persistence step shared by every document type:
// one database transaction holding the document and its outbox event,
// retried on transient errors.
type Submitter struct {
	txManager  TransactionManager
	outboxRepo OutboxRepository
	retrier    Retrier
	recorder   Recorder
	logger     zerolog.Logger
}

// NewSubmitter creates a Submitter. retrier and recorder may be nil.
func NewSubmitter(
	txManager TransactionManager,
	outboxRepo OutboxRepository,
	retrier Retrier,
	recorder Recorder,
	logger zerolog.Logger,
) *Submitter {
	return &Submitter{
		txManager:  txManager,
		outboxRepo: outboxRepo,
		retrier:    retrier,
		recorder:   recorder,
		logger:     logger,
	}
}

// reject records a blocked submission and returns its ValidationError.
func (s *Submitter) reject(docType string, decision domain.Decision) error {
	if s.recorder != nil {
		s.recorder.SubmissionRejected(docType, decision.Reasons)
	}
	s.logger.Debug().
		Str("document", docType).
		Int("reasons", len(decision.Reasons)).
		Msg("submission blocked by validation")

	return &domain.ValidationError{Decision: decision}
}

// persist writes the document and its event atomically.
// Any failure is returned as a *domain.PersistenceError.
func (s *Submitter) persist(
	ctx context.Context,
	docType, docID string,
	write func(ctx context.Context, tx Transaction) error,
	event *domain.OutboxEvent,
) error {
	start := time.Now()

	op := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := s.txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := write(txCtx, tx); err != nil {
			return err
		}

		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	var err error
	if s.retrier != nil {
		err = s.retrier.Retry(ctx, op)
	} else {
		err = op()
	}

	if err != nil {
		if s.recorder != nil {
			s.recorder.PersistenceFailed(docType)
		}
		s.logger.Error().Err(err).
			Str("document", docType).
			Str("id", docID).
			Msg("failed to persist document")
		return &domain.PersistenceError{Err: err}
	}

	if s.recorder != nil {
		s.recorder.DocumentSubmitted(docType, time.Since(start))
	}
	s.logger.Info().
		Str("document", docType).
		Str("id", docID).
		Str("actor", domain.ActorID(ctx)).
		Msg("document submitted")

	return nil
}
