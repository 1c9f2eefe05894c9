package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gobooks/internal/domain"
)

const accountColumns = `id, account_number, account_name, account_type, parent_account_id,
	description, is_active, created_at, updated_at`

const getAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

const listAccounts = `SELECT ` + accountColumns + ` FROM accounts
WHERE ($1::text = '' OR account_type = $1)
	AND (NOT $2::boolean OR is_active)
ORDER BY account_number
LIMIT $3 OFFSET $4`

// AccountRepository implements usecase.AccountDirectory.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Lookup retrieves an account by ID.
func (r *AccountRepository) Lookup(ctx context.Context, id string) (*domain.Account, error) {
	account, err := scanAccount(r.db.QueryRow(ctx, getAccountByID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return account, nil
}

// List lists accounts matching filter, ordered by account number.
func (r *AccountRepository) List(ctx context.Context, filter domain.AccountFilter) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, listAccounts,
		string(filter.Type),
		filter.ActiveOnly,
		int32(filter.Limit),
		int32(filter.Offset),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]*domain.Account, 0, max(filter.Limit, 0))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		accountType string
		parentID    pgtype.Text
		description pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	if err := row.Scan(
		&a.ID,
		&a.Code,
		&a.Name,
		&accountType,
		&parentID,
		&description,
		&a.Active,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	a.Type = domain.AccountType(accountType)
	if parentID.Valid {
		p := parentID.String
		a.ParentID = &p
	}
	a.Description = description.String
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}
