package usecase

import (
	"context"

	"github.com/iho/gobooks/internal/domain"
)

const (
	defaultAccountPage = 20
	maxAccountPage     = 500
)

// AccountUseCase exposes the account directory to the presentation layer.
// Documents never create accounts; the chart is maintained elsewhere.
type AccountUseCase struct {
	accounts AccountDirectory
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accounts AccountDirectory) *AccountUseCase {
	return &AccountUseCase{accounts: accounts}
}

// GetAccount resolves a single account reference.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accounts.Lookup(ctx, id)
}

// ListAccountsInput selects a page of the chart of accounts.
// Type is optional; ActiveOnly hides accounts that can no longer be posted to.
type ListAccountsInput struct {
	Type       string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ListAccounts lists accounts ordered by code, e.g. to fill an account picker.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	accountType, err := domain.ParseAccountType(input.Type)
	if err != nil {
		return nil, err
	}

	filter := domain.AccountFilter{
		Type:       accountType,
		ActiveOnly: input.ActiveOnly,
		Limit:      input.Limit,
		Offset:     max(input.Offset, 0),
	}
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultAccountPage
	case filter.Limit > maxAccountPage:
		filter.Limit = maxAccountPage
	}

	return uc.accounts.List(ctx, filter)
}
