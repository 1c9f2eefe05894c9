package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
	"github.com/iho/gobooks/internal/usecase/mocks"
)

func TestBudgetUseCase_Submit(t *testing.T) {
	tests := []struct {
		name        string
		doc         domain.BudgetDocument
		persist     bool
		expectError bool
	}{
		{
			name: "valid budget defaults fiscal year",
			doc: domain.BudgetDocument{
				Name:        "Marketing",
				StartDate:   mustDate("2024-01-01"),
				EndDate:     mustDate("2024-12-31"),
				TotalAmount: domain.NewAmount("50000"),
			},
			persist: true,
		},
		{
			name: "end before start",
			doc: domain.BudgetDocument{
				Name:      "Marketing",
				StartDate: mustDate("2024-06-01"),
				EndDate:   mustDate("2024-05-01"),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			repo := mocks.NewMockBudgetRepository(f.ctrl)

			if tt.persist {
				f.expectTx(true)
				repo.EXPECT().Create(gomock.Any(), f.tx, gomock.Any()).Return(nil)
				f.outbox.EXPECT().Create(gomock.Any(), f.tx, gomock.Any()).Return(nil)
				f.recorder.EXPECT().DocumentSubmitted(usecase.DocBudget, gomock.Any())
			} else {
				f.recorder.EXPECT().SubmissionRejected(usecase.DocBudget, gomock.Any())
			}

			uc := usecase.NewBudgetUseCase(f.gate(), repo, f.idGen, f.submitter())
			doc := tt.doc
			budget, err := uc.Submit(context.Background(), &doc)

			if tt.expectError {
				var verr *domain.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if budget.FiscalYear != 2024 {
				t.Errorf("expected fiscal year 2024, got %d", budget.FiscalYear)
			}
			if budget.Status != domain.BudgetStatusDraft {
				t.Errorf("expected draft status, got %s", budget.Status)
			}
			if got := budget.TotalAmount.StringFixed(2); got != "50000.00" {
				t.Errorf("expected total 50000.00, got %s", got)
			}
		})
	}
}
