package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the percentage applied when none is entered.
const DefaultTaxRate = 10

var unusualTaxRate = decimal.NewFromInt(100)

// TaxRate is a percentage parsed once from free text.
// Values outside 0..100 are kept as entered and flagged.
type TaxRate struct {
	text  string
	value decimal.Decimal
}

// ParseTaxRate parses text such as "10", "7.5" or "7.5%".
// Unparseable text yields zero.
func ParseTaxRate(text string) TaxRate {
	return TaxRate{text: text, value: ParseAmount(strings.TrimSuffix(strings.TrimSpace(text), "%"))}
}

// TaxRateOf builds a TaxRate from a programmatic value.
func TaxRateOf(d decimal.Decimal) TaxRate {
	return TaxRate{text: d.String(), value: d}
}

// Text returns the rate as typed.
func (r TaxRate) Text() string { return r.text }

// Value returns the percentage at full precision.
func (r TaxRate) Value() decimal.Decimal { return r.value }

// Negative reports whether the rate is below zero.
func (r TaxRate) Negative() bool { return r.value.IsNegative() }

// Unusual reports whether the rate exceeds one hundred percent.
func (r TaxRate) Unusual() bool { return r.value.GreaterThan(unusualTaxRate) }

// MarshalJSON encodes the rate as its typed text.
func (r TaxRate) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.text)
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (r *TaxRate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = ParseTaxRate(text)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*r = TaxRate{}
		return nil
	}
	*r = ParseTaxRate(string(data))
	return nil
}

// InvoiceLine is one taxable item of an invoice.
type InvoiceLine struct {
	AccountID   string `json:"account_id,omitempty"`
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unit_price"`
}

// NewInvoiceLine builds a line from editing input, clamping negative values to zero.
func NewInvoiceLine(accountID, description, quantity, unitPrice string) InvoiceLine {
	return InvoiceLine{
		AccountID:   strings.TrimSpace(accountID),
		Description: description,
		Quantity:    NewAmount(quantity).NonNegative(),
		UnitPrice:   NewAmount(unitPrice).NonNegative(),
	}
}

// SubtotalLine expresses a bare subtotal as a single line of quantity one.
func SubtotalLine(description string, subtotal Amount) InvoiceLine {
	if strings.TrimSpace(description) == "" {
		description = "Subtotal"
	}
	return InvoiceLine{
		Description: description,
		Quantity:    AmountOf(decimal.NewFromInt(1)),
		UnitPrice:   subtotal.NonNegative(),
	}
}

// Amount is the exact quantity times the two-place unit price, unrounded.
// The unit price is a currency amount, so the stored price times the stored
// quantity gives back the line amount.
func (l InvoiceLine) Amount() decimal.Decimal {
	qty := l.Quantity.NonNegative().Exact()
	price := l.UnitPrice.NonNegative().Value()
	return qty.Mul(price)
}

// InvoiceTotals is the subtotal, tax and total of an invoice.
type InvoiceTotals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// CalculateInvoiceTotals derives totals at full precision.
func CalculateInvoiceTotals(lines []InvoiceLine, rate TaxRate) InvoiceTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Amount())
	}

	tax := subtotal.Mul(rate.Value().Shift(-2))

	return InvoiceTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}
}

// Rounded rounds subtotal and tax to currency places and rebuilds the total
// from the rounded parts so the three figures always add up.
func (t InvoiceTotals) Rounded() InvoiceTotals {
	subtotal := RoundCurrency(t.Subtotal)
	tax := RoundCurrency(t.TaxAmount)
	return InvoiceTotals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}
}
