package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

const createInvoice = `INSERT INTO invoices (
	id, invoice_number, invoice_type, invoice_date, due_date, vendor_id, customer_id,
	subtotal, tax_rate, tax_amount, total_amount, paid_amount, status, notes,
	created_by, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const createInvoiceLine = `INSERT INTO invoice_lines (
	id, invoice_id, position, account_id, description, quantity, unit_price, amount
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const getInvoiceByID = `SELECT id, invoice_number, invoice_type, invoice_date, due_date,
	vendor_id, customer_id, subtotal, tax_rate, tax_amount, total_amount, paid_amount,
	status, notes, created_by, created_at
FROM invoices WHERE id = $1`

const getInvoiceLines = `SELECT id, invoice_id, position, account_id, description,
	quantity, unit_price, amount
FROM invoice_lines WHERE invoice_id = $1
ORDER BY position`

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	db DBTX
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db DBTX) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create writes the invoice and its lines within a transaction.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, inv *domain.Invoice) error {
	q := pgxTx(tx)

	_, err := q.Exec(ctx, createInvoice,
		inv.ID,
		inv.Number,
		string(inv.Type),
		timeToPgDate(inv.InvoiceDate),
		timeToPgDate(inv.DueDate),
		stringToPgText(inv.VendorID),
		stringToPgText(inv.CustomerID),
		decimalToNumeric(inv.Subtotal),
		decimalToNumeric(inv.TaxRate),
		decimalToNumeric(inv.TaxAmount),
		decimalToNumeric(inv.TotalAmount),
		decimalToNumeric(inv.PaidAmount),
		string(inv.Status),
		stringToPgText(inv.Notes),
		inv.CreatedBy,
		timeToPgTimestamptz(inv.CreatedAt),
	)
	if err != nil {
		return err
	}

	for _, line := range inv.Lines {
		_, err := q.Exec(ctx, createInvoiceLine,
			line.ID,
			inv.ID,
			int32(line.Position),
			stringToPgText(line.AccountID),
			line.Description,
			decimalToNumeric(line.Quantity),
			decimalToNumeric(line.UnitPrice),
			decimalToNumeric(line.Amount),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves an invoice with its lines.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var (
		inv         domain.Invoice
		invoiceType string
		status      string
		invoiceDate pgtype.Date
		dueDate     pgtype.Date
		vendorID    pgtype.Text
		customerID  pgtype.Text
		subtotal    pgtype.Numeric
		taxRate     pgtype.Numeric
		taxAmount   pgtype.Numeric
		totalAmount pgtype.Numeric
		paidAmount  pgtype.Numeric
		notes       pgtype.Text
		createdAt   pgtype.Timestamptz
	)

	err := r.db.QueryRow(ctx, getInvoiceByID, id).Scan(
		&inv.ID,
		&inv.Number,
		&invoiceType,
		&invoiceDate,
		&dueDate,
		&vendorID,
		&customerID,
		&subtotal,
		&taxRate,
		&taxAmount,
		&totalAmount,
		&paidAmount,
		&status,
		&notes,
		&inv.CreatedBy,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}

		return nil, err
	}

	inv.Type = domain.InvoiceType(invoiceType)
	inv.Status = domain.InvoiceStatus(status)
	inv.InvoiceDate = invoiceDate.Time
	inv.DueDate = dueDate.Time
	inv.VendorID = vendorID.String
	inv.CustomerID = customerID.String
	inv.Subtotal = numericToDecimal(subtotal)
	inv.TaxRate = numericToDecimal(taxRate)
	inv.TaxAmount = numericToDecimal(taxAmount)
	inv.TotalAmount = numericToDecimal(totalAmount)
	inv.PaidAmount = numericToDecimal(paidAmount)
	inv.Notes = notes.String
	inv.CreatedAt = createdAt.Time

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Lines = lines

	return &inv, nil
}

func (r *InvoiceRepository) getLines(ctx context.Context, id string) ([]domain.InvoiceLineRecord, error) {
	rows, err := r.db.Query(ctx, getInvoiceLines, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.InvoiceLineRecord
	for rows.Next() {
		var (
			line      domain.InvoiceLineRecord
			position  int32
			accountID pgtype.Text
			quantity  pgtype.Numeric
			unitPrice pgtype.Numeric
			amount    pgtype.Numeric
		)
		if err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&position,
			&accountID,
			&line.Description,
			&quantity,
			&unitPrice,
			&amount,
		); err != nil {
			return nil, err
		}

		line.Position = int(position)
		line.AccountID = accountID.String
		line.Quantity = numericToDecimal(quantity)
		line.UnitPrice = numericToDecimal(unitPrice)
		line.Amount = numericToDecimal(amount)
		lines = append(lines, line)
	}

	return lines, rows.Err()
}
