package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "100", want: "100"},
		{name: "decimals", in: "12.345", want: "12.345"},
		{name: "currency symbol and separators", in: "$1,234.50", want: "1234.5"},
		{name: "surrounding spaces", in: "  42 ", want: "42"},
		{name: "empty", in: "", want: "0"},
		{name: "garbage", in: "abc", want: "0"},
		{name: "two dots", in: "1.2.3", want: "0"},
		{name: "negative kept", in: "-5", want: "-5"},
		{name: "scientific notation", in: "1.5e3", want: "1500"},
		{name: "huge exponent", in: "1e900000000", want: "0"},
		{name: "tiny exponent", in: "1e-900000000", want: "0"},
		{name: "largest storable", in: "999999999999999999.99", want: "999999999999999999.99"},
		{name: "too large", in: "1000000000000000000", want: "0"},
		{name: "too large negative", in: "-1e18", want: "0"},
		{name: "too many fraction digits", in: "0.0000000000000000001", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestStorable(t *testing.T) {
	assert.True(t, Storable(decimal.RequireFromString("999999999999999999.99")))
	assert.True(t, Storable(decimal.RequireFromString("-999999999999999999.994")))
	assert.False(t, Storable(decimal.RequireFromString("999999999999999999.995")))
	assert.False(t, Storable(decimal.New(1, 18)))
}

func TestAmount_PreservesTextUntilCommit(t *testing.T) {
	a := NewAmount("12.345")

	assert.Equal(t, "12.345", a.Text())
	assert.Equal(t, "12.35", a.Value().StringFixed(2))
	assert.True(t, a.Exact().Equal(decimal.RequireFromString("12.345")))

	committed := a.Commit()
	assert.Equal(t, "12.35", committed.Text())
	assert.True(t, committed.Value().Equal(a.Value()))
}

func TestAmount_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.13", NewAmount("0.125").String())
	assert.Equal(t, "-0.13", RoundCurrency(decimal.RequireFromString("-0.125")).StringFixed(2))
}

func TestAmount_NonNegative(t *testing.T) {
	clamped := NewAmount("-10").NonNegative()
	assert.True(t, clamped.IsZero())
	assert.Equal(t, "0", clamped.Text())

	kept := NewAmount("10").NonNegative()
	assert.Equal(t, "10", kept.Text())
}

func TestAmount_JSON(t *testing.T) {
	var fromString Amount
	require.NoError(t, json.Unmarshal([]byte(`"1,000.5"`), &fromString))
	assert.Equal(t, "1000.50", fromString.String())
	assert.Equal(t, "1,000.5", fromString.Text())

	var fromNumber Amount
	require.NoError(t, json.Unmarshal([]byte(`250.75`), &fromNumber))
	assert.Equal(t, "250.75", fromNumber.String())

	data, err := json.Marshal(NewAmount("3.1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"3.1"`, string(data))
}
