package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

const createBudget = `INSERT INTO budgets (
	id, budget_name, description, fiscal_year, start_date, end_date,
	total_amount, status, created_by, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const getBudgetByID = `SELECT id, budget_name, description, fiscal_year, start_date, end_date,
	total_amount, status, created_by, created_at
FROM budgets WHERE id = $1`

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create writes a budget within a transaction.
func (r *BudgetRepository) Create(ctx context.Context, tx usecase.Transaction, b *domain.Budget) error {
	_, err := pgxTx(tx).Exec(ctx, createBudget,
		b.ID,
		b.Name,
		stringToPgText(b.Description),
		int32(b.FiscalYear),
		timeToPgDate(b.StartDate),
		timeToPgDate(b.EndDate),
		decimalToNumeric(b.TotalAmount),
		string(b.Status),
		b.CreatedBy,
		timeToPgTimestamptz(b.CreatedAt),
	)

	return err
}

// GetByID retrieves a budget by ID.
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	var (
		b           domain.Budget
		description pgtype.Text
		fiscalYear  int32
		startDate   pgtype.Date
		endDate     pgtype.Date
		totalAmount pgtype.Numeric
		status      string
		createdAt   pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, getBudgetByID, id).Scan(
		&b.ID,
		&b.Name,
		&description,
		&fiscalYear,
		&startDate,
		&endDate,
		&totalAmount,
		&status,
		&b.CreatedBy,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	b.Description = description.String
	b.FiscalYear = int(fiscalYear)
	b.StartDate = startDate.Time
	b.EndDate = endDate.Time
	b.TotalAmount = numericToDecimal(totalAmount)
	b.Status = domain.BudgetStatus(status)
	b.CreatedAt = createdAt.Time

	return &b, nil
}
