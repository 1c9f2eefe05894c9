package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gobooks/internal/domain"
)

const getVendorByID = `SELECT id, vendor_code, vendor_name, is_active FROM vendors WHERE id = $1`

const getCustomerByID = `SELECT id, customer_code, customer_name, is_active FROM customers WHERE id = $1`

// CounterpartyRepository implements usecase.CounterpartyDirectory over the
// vendors and customers tables.
type CounterpartyRepository struct {
	db DBTX
}

// NewCounterpartyRepository creates a new CounterpartyRepository.
func NewCounterpartyRepository(db DBTX) *CounterpartyRepository {
	return &CounterpartyRepository{db: db}
}

// LookupCounterparty retrieves a vendor or customer by ID.
func (r *CounterpartyRepository) LookupCounterparty(ctx context.Context, kind domain.CounterpartyKind, id string) (*domain.Counterparty, error) {
	var query string
	switch kind {
	case domain.CounterpartyVendor:
		query = getVendorByID
	case domain.CounterpartyCustomer:
		query = getCustomerByID
	default:
		return nil, fmt.Errorf("unknown counterparty kind %q", kind)
	}

	var (
		party domain.Counterparty
		code  pgtype.Text
	)
	err := r.db.QueryRow(ctx, query, id).Scan(&party.ID, &code, &party.Name, &party.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCounterpartyNotFound
		}
		return nil, err
	}

	party.Kind = kind
	party.Code = code.String
	return &party, nil
}
