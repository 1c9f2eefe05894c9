package usecase

import (
	"context"
	"time"

	"github.com/iho/gobooks/internal/domain"
)

// TransactionUseCase validates and submits transactions and journal entries.
type TransactionUseCase struct {
	gate      *domain.Gate
	txnRepo   TransactionRepository
	idGen     IDGenerator
	submitter *Submitter
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	gate *domain.Gate,
	txnRepo TransactionRepository,
	idGen IDGenerator,
	submitter *Submitter,
) *TransactionUseCase {
	return &TransactionUseCase{
		gate:      gate,
		txnRepo:   txnRepo,
		idGen:     idGen,
		submitter: submitter,
	}
}

// Preview returns the current totals and gate decision without persisting.
func (uc *TransactionUseCase) Preview(ctx context.Context, doc *domain.TransactionDocument) (domain.Balance, domain.Decision) {
	return uc.preview(ctx, doc, false)
}

func (uc *TransactionUseCase) preview(ctx context.Context, doc *domain.TransactionDocument, inFlight bool) (domain.Balance, domain.Decision) {
	return doc.LineSet().Balance(), uc.gate.CheckTransaction(ctx, doc, inFlight)
}

// Submit persists doc if the gate accepts it.
// Nothing is written when the gate blocks.
func (uc *TransactionUseCase) Submit(ctx context.Context, doc *domain.TransactionDocument) (*domain.Transaction, error) {
	decision := uc.gate.CheckTransaction(ctx, doc, false)
	if !decision.CanSubmit {
		return nil, uc.submitter.reject(DocTransaction, decision)
	}

	txn := domain.BuildTransaction(doc, uc.idGen.Generate, domain.ActorID(ctx), time.Now().UTC())
	event := domain.NewTransactionCreatedEvent(uc.idGen.Generate(), txn)

	err := uc.submitter.persist(ctx, DocTransaction, txn.ID, func(ctx context.Context, tx Transaction) error {
		return uc.txnRepo.Create(ctx, tx, txn)
	}, event)
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// Get returns a stored transaction.
func (uc *TransactionUseCase) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.txnRepo.GetByID(ctx, id)
}
