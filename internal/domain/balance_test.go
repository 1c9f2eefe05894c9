package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func lineOf(debit, credit string) EntryLine {
	return EntryLine{AccountID: "acc", Debit: NewAmount(debit), Credit: NewAmount(credit)}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name       string
		lines      []EntryLine
		debit      string
		credit     string
		difference string
		balanced   bool
		state      BalanceState
	}{
		{
			name:       "balanced pair",
			lines:      []EntryLine{lineOf("100", "0"), lineOf("0", "100")},
			debit:      "100",
			credit:     "100",
			difference: "0",
			balanced:   true,
			state:      BalanceBalanced,
		},
		{
			name:       "debit heavy",
			lines:      []EntryLine{lineOf("150", "0"), lineOf("0", "100")},
			debit:      "150",
			credit:     "100",
			difference: "50",
			balanced:   false,
			state:      BalanceOutOfBalance,
		},
		{
			name:       "credit heavy difference is absolute",
			lines:      []EntryLine{lineOf("30", "0"), lineOf("0", "100.5")},
			debit:      "30",
			credit:     "100.5",
			difference: "70.5",
			balanced:   false,
			state:      BalanceOutOfBalance,
		},
		{
			name:       "all zero is not balanced",
			lines:      []EntryLine{lineOf("", ""), lineOf("0", "0")},
			debit:      "0",
			credit:     "0",
			difference: "0",
			balanced:   false,
			state:      BalanceEmpty,
		},
		{
			name:       "uses canonical two place values",
			lines:      []EntryLine{lineOf("10.005", "0"), lineOf("0", "10.01")},
			debit:      "10.01",
			credit:     "10.01",
			difference: "0",
			balanced:   true,
			state:      BalanceBalanced,
		},
		{
			name:       "split credits",
			lines:      []EntryLine{lineOf("250", "0"), lineOf("0", "100"), lineOf("0", "150")},
			debit:      "250",
			credit:     "250",
			difference: "0",
			balanced:   true,
			state:      BalanceBalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Reconcile(tt.lines)

			assert.True(t, b.TotalDebit.Equal(decimal.RequireFromString(tt.debit)), "debit %s", b.TotalDebit)
			assert.True(t, b.TotalCredit.Equal(decimal.RequireFromString(tt.credit)), "credit %s", b.TotalCredit)
			assert.True(t, b.Difference.Equal(decimal.RequireFromString(tt.difference)), "difference %s", b.Difference)
			assert.Equal(t, tt.balanced, b.IsBalanced)
			assert.Equal(t, tt.state, b.State())

			if b.IsBalanced {
				assert.True(t, b.TotalDebit.Equal(b.TotalCredit))
				assert.True(t, b.TotalDebit.IsPositive())
			}
		})
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	lines := []EntryLine{lineOf("99.99", "0"), lineOf("0", "45"), lineOf("0", "54.99")}

	first := Reconcile(lines)
	second := Reconcile(lines)

	assert.Equal(t, first, second)
}
