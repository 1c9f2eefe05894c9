package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestNumericConversion(t *testing.T) {
	for _, in := range []string{"0", "1100.00", "-42.5", "0.0000001", "123456789012.345"} {
		want := decimal.RequireFromString(in)
		if got := numericToDecimal(decimalToNumeric(want)); !got.Equal(want) {
			t.Fatalf("round trip of %s gave %s", in, got)
		}
	}

	for name, n := range map[string]pgtype.Numeric{
		"null": {},
		"nan":  {NaN: true, Valid: true},
	} {
		if got := numericToDecimal(n); !got.IsZero() {
			t.Fatalf("expected %s to read as zero, got %s", name, got)
		}
	}
}

func TestNullableBindings(t *testing.T) {
	if stringToPgText("").Valid || !stringToPgText("ACME Ltd").Valid {
		t.Fatalf("expected only empty strings to bind as NULL")
	}
	if timeToPgDate(time.Time{}).Valid || timeToPgTimestamptz(time.Time{}).Valid {
		t.Fatalf("expected the zero time to bind as NULL")
	}

	local := time.Date(2024, 6, 30, 9, 0, 0, 0, time.FixedZone("EEST", 3*3600))
	if ts := timeToPgTimestamptz(local); ts.Time.Location() != time.UTC || !ts.Time.Equal(local) {
		t.Fatalf("expected timestamp normalised to UTC, got %v", ts.Time)
	}
}
