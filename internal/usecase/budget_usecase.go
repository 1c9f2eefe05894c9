package usecase

import (
	"context"
	"time"

	"github.com/iho/gobooks/internal/domain"
)

// BudgetUseCase validates and submits budgets.
type BudgetUseCase struct {
	gate       *domain.Gate
	budgetRepo BudgetRepository
	idGen      IDGenerator
	submitter  *Submitter
}

// NewBudgetUseCase creates a new BudgetUseCase.
func NewBudgetUseCase(gate *domain.Gate, budgetRepo BudgetRepository, idGen IDGenerator, submitter *Submitter) *BudgetUseCase {
	return &BudgetUseCase{
		gate:       gate,
		budgetRepo: budgetRepo,
		idGen:      idGen,
		submitter:  submitter,
	}
}

func applyBudgetDefaults(doc *domain.BudgetDocument) {
	if doc.FiscalYear == 0 && !doc.StartDate.IsZero() {
		doc.FiscalYear = doc.StartDate.Year()
	}
}

// Preview returns the gate decision without persisting.
func (uc *BudgetUseCase) Preview(doc *domain.BudgetDocument) domain.Decision {
	applyBudgetDefaults(doc)
	return uc.gate.CheckBudget(doc, false)
}

// Submit persists doc if the gate accepts it.
func (uc *BudgetUseCase) Submit(ctx context.Context, doc *domain.BudgetDocument) (*domain.Budget, error) {
	applyBudgetDefaults(doc)

	decision := uc.gate.CheckBudget(doc, false)
	if !decision.CanSubmit {
		return nil, uc.submitter.reject(DocBudget, decision)
	}

	budget := domain.BuildBudget(doc, uc.idGen.Generate(), domain.ActorID(ctx), time.Now().UTC())
	event := domain.NewBudgetCreatedEvent(uc.idGen.Generate(), budget)

	err := uc.submitter.persist(ctx, DocBudget, budget.ID, func(ctx context.Context, tx Transaction) error {
		return uc.budgetRepo.Create(ctx, tx, budget)
	}, event)
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// Get returns a stored budget.
func (uc *BudgetUseCase) Get(ctx context.Context, id string) (*domain.Budget, error) {
	return uc.budgetRepo.GetByID(ctx, id)
}
