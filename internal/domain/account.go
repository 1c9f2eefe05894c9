package domain

import "time"

// AccountType is the chart-of-accounts category.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// IsValid reports whether t is a known account type.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Account is a chart-of-accounts entry owned by the account directory.
// Documents only hold its ID.
type Account struct {
	ID          string
	Code        string
	Name        string
	Type        AccountType
	ParentID    *string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParseAccountType parses an optional account type filter.
// Empty text yields the empty type, which matches every account.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if s != "" && !t.IsValid() {
		return "", ErrInvalidAccountType
	}
	return t, nil
}

// AccountFilter narrows an account listing.
type AccountFilter struct {
	Type       AccountType
	ActiveOnly bool
	Limit      int
	Offset     int
}

// DisplayName returns "code - name" when a code is set.
func (a *Account) DisplayName() string {
	if a.Code == "" {
		return a.Name
	}
	return a.Code + " - " + a.Name
}
