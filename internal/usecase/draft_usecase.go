package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobooks/internal/domain"
)

// DraftState is a draft together with its current gate decision.
type DraftState struct {
	Draft    *domain.Draft
	Balance  domain.Balance
	Decision domain.Decision
}

// DraftUseCase manages server-held transaction editing sessions.
// Every mutation reloads the draft, applies one line-set operation
// and saves it back with fresh totals.
type DraftUseCase struct {
	drafts       DraftStore
	transactions *TransactionUseCase
	idGen        IDGenerator
	ttl          time.Duration
	lockTTL      time.Duration
	logger       zerolog.Logger
}

// NewDraftUseCase creates a new DraftUseCase.
func NewDraftUseCase(
	drafts DraftStore,
	transactions *TransactionUseCase,
	idGen IDGenerator,
	ttl, lockTTL time.Duration,
	logger zerolog.Logger,
) *DraftUseCase {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	if lockTTL <= 0 {
		lockTTL = DefaultSubmitLockTTL
	}
	return &DraftUseCase{
		drafts:       drafts,
		transactions: transactions,
		idGen:        idGen,
		ttl:          ttl,
		lockTTL:      lockTTL,
		logger:       logger,
	}
}

// CreateDraftInput represents the header of a new draft.
type CreateDraftInput struct {
	Kind        domain.TransactionKind
	Date        time.Time
	Description string
	Reference   string
	Notes       string
}

// Create starts a draft with two blank lines.
func (uc *DraftUseCase) Create(ctx context.Context, input CreateDraftInput) (*DraftState, error) {
	now := time.Now().UTC()

	date := input.Date
	if date.IsZero() {
		date = now.Truncate(24 * time.Hour)
	}

	kind := input.Kind
	if kind == "" {
		kind = domain.KindTransaction
	}

	draft := &domain.Draft{
		ID: uc.idGen.Generate(),
		Document: domain.TransactionDocument{
			Kind:        kind,
			Date:        date,
			Description: input.Description,
			Reference:   input.Reference,
			Notes:       input.Notes,
			Lines:       domain.NewEntryLineSet(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.drafts.Save(ctx, draft, uc.ttl); err != nil {
		return nil, err
	}

	return uc.state(ctx, draft)
}

// Get returns a draft with its current decision.
func (uc *DraftUseCase) Get(ctx context.Context, id string) (*DraftState, error) {
	draft, err := uc.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.state(ctx, draft)
}

// UpdateDraftHeaderInput holds header fields to change; nil fields are kept.
type UpdateDraftHeaderInput struct {
	Date        *time.Time
	Description *string
	Reference   *string
	Notes       *string
}

// UpdateHeader changes header fields of a draft.
func (uc *DraftUseCase) UpdateHeader(ctx context.Context, id string, input UpdateDraftHeaderInput) (*DraftState, error) {
	return uc.mutate(ctx, id, func(doc *domain.TransactionDocument) {
		if input.Date != nil {
			doc.Date = *input.Date
		}
		if input.Description != nil {
			doc.Description = *input.Description
		}
		if input.Reference != nil {
			doc.Reference = *input.Reference
		}
		if input.Notes != nil {
			doc.Notes = *input.Notes
		}
	})
}

// AddLine appends a blank line.
func (uc *DraftUseCase) AddLine(ctx context.Context, id string) (*DraftState, error) {
	return uc.mutate(ctx, id, func(doc *domain.TransactionDocument) {
		doc.LineSet().AddLine()
	})
}

// RemoveLine removes a line unless the draft is at its two-line floor.
func (uc *DraftUseCase) RemoveLine(ctx context.Context, id string, lineID int64) (*DraftState, error) {
	return uc.mutate(ctx, id, func(doc *domain.TransactionDocument) {
		doc.LineSet().RemoveLine(lineID)
	})
}

// UpdateLine sets one field of one line.
func (uc *DraftUseCase) UpdateLine(ctx context.Context, id string, lineID int64, field domain.LineField, value string) (*DraftState, error) {
	return uc.mutate(ctx, id, func(doc *domain.TransactionDocument) {
		doc.LineSet().UpdateLine(lineID, field, value)
	})
}

// CommitLine canonicalizes an amount field once the user leaves it.
func (uc *DraftUseCase) CommitLine(ctx context.Context, id string, lineID int64, field domain.LineField) (*DraftState, error) {
	return uc.mutate(ctx, id, func(doc *domain.TransactionDocument) {
		doc.LineSet().CommitLine(lineID, field)
	})
}

// Submit persists the draft as a transaction.
// Only one submission per draft may be in flight. A failed submission
// leaves the draft untouched so it can be retried.
func (uc *DraftUseCase) Submit(ctx context.Context, id string) (*domain.Transaction, error) {
	acquired, err := uc.drafts.AcquireSubmit(ctx, id, uc.lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrSubmissionInFlight
	}
	defer func() {
		if err := uc.drafts.ReleaseSubmit(context.WithoutCancel(ctx), id); err != nil {
			uc.logger.Warn().Err(err).Str("draft_id", id).Msg("failed to release submit flag")
		}
	}()

	draft, err := uc.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	txn, err := uc.transactions.Submit(ctx, &draft.Document)
	if err != nil {
		return nil, err
	}

	if err := uc.drafts.Delete(ctx, id); err != nil {
		uc.logger.Warn().Err(err).Str("draft_id", id).Msg("failed to delete submitted draft")
	}

	return txn, nil
}

// Discard drops a draft.
func (uc *DraftUseCase) Discard(ctx context.Context, id string) error {
	if _, err := uc.drafts.Get(ctx, id); err != nil {
		return err
	}
	return uc.drafts.Delete(ctx, id)
}

func (uc *DraftUseCase) mutate(ctx context.Context, id string, apply func(doc *domain.TransactionDocument)) (*DraftState, error) {
	draft, err := uc.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(&draft.Document)
	draft.UpdatedAt = time.Now().UTC()

	if err := uc.drafts.Save(ctx, draft, uc.ttl); err != nil {
		return nil, err
	}

	return uc.state(ctx, draft)
}

// state evaluates the draft, blocking it while another request is submitting it.
func (uc *DraftUseCase) state(ctx context.Context, draft *domain.Draft) (*DraftState, error) {
	inFlight, err := uc.drafts.SubmitInFlight(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	balance, decision := uc.transactions.preview(ctx, &draft.Document, inFlight)
	return &DraftState{Draft: draft, Balance: balance, Decision: decision}, nil
}
