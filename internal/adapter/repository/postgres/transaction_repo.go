package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

const createTransaction = `INSERT INTO transactions (
	id, transaction_number, kind, transaction_date, description, reference_number,
	notes, status, total_debit, total_credit, created_by, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const createTransactionLine = `INSERT INTO transaction_lines (
	id, transaction_id, position, account_id, debit_amount, credit_amount, description
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

const getTransactionByID = `SELECT id, transaction_number, kind, transaction_date, description,
	reference_number, notes, status, total_debit, total_credit, created_by, created_at
FROM transactions WHERE id = $1`

const getTransactionLines = `SELECT id, transaction_id, position, account_id,
	debit_amount, credit_amount, description
FROM transaction_lines WHERE transaction_id = $1
ORDER BY position`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes the header and its lines within a transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	q := pgxTx(tx)

	_, err := q.Exec(ctx, createTransaction,
		txn.ID,
		txn.Number,
		string(txn.Kind),
		timeToPgDate(txn.Date),
		txn.Description,
		stringToPgText(txn.Reference),
		stringToPgText(txn.Notes),
		string(txn.Status),
		decimalToNumeric(txn.TotalDebit),
		decimalToNumeric(txn.TotalCredit),
		txn.CreatedBy,
		timeToPgTimestamptz(txn.CreatedAt),
	)
	if err != nil {
		return err
	}

	for _, line := range txn.Lines {
		_, err := q.Exec(ctx, createTransactionLine,
			line.ID,
			txn.ID,
			int32(line.Position),
			line.AccountID,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
			stringToPgText(line.Description),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a transaction with its lines.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var (
		txn         domain.Transaction
		kind        string
		status      string
		date        pgtype.Date
		reference   pgtype.Text
		notes       pgtype.Text
		totalDebit  pgtype.Numeric
		totalCredit pgtype.Numeric
		createdAt   pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, getTransactionByID, id).Scan(
		&txn.ID,
		&txn.Number,
		&kind,
		&date,
		&txn.Description,
		&reference,
		&notes,
		&status,
		&totalDebit,
		&totalCredit,
		&txn.CreatedBy,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	txn.Kind = domain.TransactionKind(kind)
	txn.Status = domain.TransactionStatus(status)
	txn.Date = date.Time
	txn.Reference = reference.String
	txn.Notes = notes.String
	txn.TotalDebit = numericToDecimal(totalDebit)
	txn.TotalCredit = numericToDecimal(totalCredit)
	txn.CreatedAt = createdAt.Time

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Lines = lines

	return &txn, nil
}

func (r *TransactionRepository) getLines(ctx context.Context, id string) ([]domain.TransactionLine, error) {
	rows, err := r.db.Query(ctx, getTransactionLines, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.TransactionLine
	for rows.Next() {
		var (
			line        domain.TransactionLine
			position    int32
			debit       pgtype.Numeric
			credit      pgtype.Numeric
			description pgtype.Text
		)
		if err := rows.Scan(
			&line.ID,
			&line.TransactionID,
			&position,
			&line.AccountID,
			&debit,
			&credit,
			&description,
		); err != nil {
			return nil, err
		}

		line.Position = int(position)
		line.Debit = numericToDecimal(debit)
		line.Credit = numericToDecimal(credit)
		line.Description = description.String
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
