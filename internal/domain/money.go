package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places every stored or totalled amount carries.
const CurrencyPlaces int32 = 2

// maxAmountScale bounds the exponent of parsed input. Values such as
// "1e900000000" would otherwise make every later rescale allocate a
// power of ten with that many digits.
const maxAmountScale = 18

// maxAmount is the first magnitude NUMERIC(20, 2) cannot hold.
var maxAmount = decimal.New(1, maxAmountScale)

var amountNoise = strings.NewReplacer("$", "", ",", "", "_", "", " ", "")

// RoundCurrency rounds d half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// Storable reports whether d fits the NUMERIC(20, 2) columns amounts are kept in.
func Storable(d decimal.Decimal) bool {
	return RoundCurrency(d).Abs().LessThan(maxAmount)
}

// ParseAmount parses user-edited text into a decimal.
// Currency symbols, thousands separators and spaces are ignored.
// Empty, unparseable or out-of-range text yields zero: the exponent must
// lie within ±18 and the magnitude below 10^18.
func ParseAmount(text string) decimal.Decimal {
	cleaned := amountNoise.Replace(strings.TrimSpace(text))
	if cleaned == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp < -maxAmountScale || exp > maxAmountScale {
		return decimal.Zero
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero
	}
	return d
}

// Amount is a currency value as it is being edited.
// The text is kept exactly as typed until Commit is called; every
// computation reads the canonical two-place Value.
type Amount struct {
	text  string
	value decimal.Decimal
}

// NewAmount builds an Amount from editing input.
func NewAmount(text string) Amount {
	return Amount{text: text, value: ParseAmount(text)}
}

// AmountOf builds an Amount from a programmatic value.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{text: d.String(), value: d}
}

// Text returns the amount as typed.
func (a Amount) Text() string {
	return a.text
}

// Exact returns the parsed value without currency rounding.
func (a Amount) Exact() decimal.Decimal {
	return a.value
}

// Value returns the canonical two-place value.
func (a Amount) Value() decimal.Decimal {
	return RoundCurrency(a.value)
}

// IsPositive reports whether the canonical value is greater than zero.
func (a Amount) IsPositive() bool {
	return a.Value().IsPositive()
}

// IsZero reports whether the canonical value is zero.
func (a Amount) IsZero() bool {
	return a.Value().IsZero()
}

// Commit canonicalizes the text to exactly two decimal places.
// Called when the user leaves the field, never on a keystroke.
func (a Amount) Commit() Amount {
	v := a.Value()
	return Amount{text: v.StringFixed(CurrencyPlaces), value: v}
}

// NonNegative clamps a negative amount to zero.
func (a Amount) NonNegative() Amount {
	if a.value.IsNegative() {
		return Amount{text: "0", value: decimal.Zero}
	}
	return a
}

// String returns the canonical value with two decimal places.
func (a Amount) String() string {
	return a.Value().StringFixed(CurrencyPlaces)
}

// MarshalJSON encodes the amount as its typed text.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = NewAmount(text)
		return nil
	}

	*a = NewAmount(string(data))
	return nil
}
