package domain

import "github.com/shopspring/decimal"

// BalanceState summarizes a Balance for display.
type BalanceState string

const (
	BalanceBalanced     BalanceState = "balanced"
	BalanceEmpty        BalanceState = "empty"
	BalanceOutOfBalance BalanceState = "out_of_balance"
)

// Balance holds the debit and credit totals of an entry line set.
type Balance struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
	IsBalanced  bool
}

// Reconcile totals the lines in a single pass.
// A set whose totals are both zero is never balanced.
func Reconcile(lines []EntryLine) Balance {
	debit := decimal.Zero
	credit := decimal.Zero

	for _, line := range lines {
		debit = debit.Add(line.Debit.Value())
		credit = credit.Add(line.Credit.Value())
	}

	return Balance{
		TotalDebit:  debit,
		TotalCredit: credit,
		Difference:  debit.Sub(credit).Abs(),
		IsBalanced:  debit.Equal(credit) && debit.IsPositive(),
	}
}

// State classifies the balance.
func (b Balance) State() BalanceState {
	switch {
	case b.IsBalanced:
		return BalanceBalanced
	case b.TotalDebit.IsZero() && b.TotalCredit.IsZero():
		return BalanceEmpty
	default:
		return BalanceOutOfBalance
	}
}
