package main

import (
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
)

// formatMoney renders d in the selected currency, falling back to a plain
// two-place number for codes go-money does not know.
func formatMoney(d decimal.Decimal) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return domain.RoundCurrency(d).StringFixed(domain.CurrencyPlaces)
	}

	minor := d.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
