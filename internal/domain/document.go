package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage layout of calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date. Empty text yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// TransactionKind distinguishes manual transactions from journal entries.
type TransactionKind string

const (
	KindTransaction TransactionKind = "transaction"
	KindJournal     TransactionKind = "journal"
)

// ParseTransactionKind defaults an empty kind to KindTransaction.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case "":
		return KindTransaction, nil
	case KindTransaction, KindJournal:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
	}
}

// NumberPrefix is the prefix of generated document numbers.
func (k TransactionKind) NumberPrefix() string {
	if k == KindJournal {
		return "JE"
	}
	return "TXN"
}

// DocumentNumber formats a generated number such as TXN-1718000000000.
func DocumentNumber(prefix string, at time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, at.UnixMilli())
}

// TransactionStatus is the lifecycle state of a stored transaction.
type TransactionStatus string

const (
	TransactionStatusDraft  TransactionStatus = "draft"
	TransactionStatusPosted TransactionStatus = "posted"
	TransactionStatusVoided TransactionStatus = "voided"
)

// TransactionDocument is a transaction or journal entry being composed.
type TransactionDocument struct {
	Kind        TransactionKind `json:"kind"`
	Number      string          `json:"number,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Lines       *EntryLineSet   `json:"lines"`
}

// LineSet returns the document lines, creating the initial set if absent.
func (d *TransactionDocument) LineSet() *EntryLineSet {
	if d.Lines == nil {
		d.Lines = NewEntryLineSet()
	}
	return d.Lines
}

// Transaction is the persisted shape of a submitted TransactionDocument.
type Transaction struct {
	ID          string
	Number      string
	Kind        TransactionKind
	Date        time.Time
	Description string
	Reference   string
	Notes       string
	Status      TransactionStatus
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Lines       []TransactionLine
	CreatedBy   string
	CreatedAt   time.Time
}

// TransactionLine is one stored line of a Transaction.
type TransactionLine struct {
	ID            string
	TransactionID string
	Position      int
	AccountID     string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Description   string
}

// BuildTransaction converts an accepted document to its persisted shape.
// Blank lines are dropped.
func BuildTransaction(doc *TransactionDocument, newID func() string, createdBy string, now time.Time) *Transaction {
	set := doc.LineSet()
	balance := set.Balance()

	number := strings.TrimSpace(doc.Number)
	if number == "" {
		number = DocumentNumber(doc.Kind.NumberPrefix(), now)
	}

	kind := doc.Kind
	if kind == "" {
		kind = KindTransaction
	}

	t := &Transaction{
		ID:          newID(),
		Number:      number,
		Kind:        kind,
		Date:        doc.Date,
		Description: doc.Description,
		Reference:   doc.Reference,
		Notes:       doc.Notes,
		Status:      TransactionStatusDraft,
		TotalDebit:  balance.TotalDebit,
		TotalCredit: balance.TotalCredit,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}

	for _, line := range set.Lines() {
		if line.IsBlank() {
			continue
		}
		t.Lines = append(t.Lines, TransactionLine{
			ID:            newID(),
			TransactionID: t.ID,
			Position:      len(t.Lines) + 1,
			AccountID:     line.AccountID,
			Debit:         line.Debit.Value(),
			Credit:        line.Credit.Value(),
			Description:   line.Description,
		})
	}

	return t
}

// InvoiceType selects the counterparty of an invoice.
type InvoiceType string

const (
	InvoiceTypePayable    InvoiceType = "payable"
	InvoiceTypeReceivable InvoiceType = "receivable"
)

// ParseInvoiceType validates an invoice type received from a client.
func ParseInvoiceType(s string) (InvoiceType, error) {
	switch t := InvoiceType(s); t {
	case InvoiceTypePayable, InvoiceTypeReceivable:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentType, s)
	}
}

// InvoiceStatus is the lifecycle state of a stored invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// DefaultPaymentTerms is added to the invoice date when no due date is given.
const DefaultPaymentTerms = 30 * 24 * time.Hour

// InvoiceDocument is a payable or receivable invoice being composed.
type InvoiceDocument struct {
	Type        InvoiceType   `json:"invoice_type"`
	Number      string        `json:"invoice_number"`
	InvoiceDate time.Time     `json:"invoice_date"`
	DueDate     time.Time     `json:"due_date"`
	VendorID    string        `json:"vendor_id,omitempty"`
	CustomerID  string        `json:"customer_id,omitempty"`
	Lines       []InvoiceLine `json:"lines"`
	TaxRate     TaxRate       `json:"tax_rate"`
	Notes       string        `json:"notes,omitempty"`
}

// CounterpartyID returns the vendor of a payable or the customer of a receivable.
func (d *InvoiceDocument) CounterpartyID() string {
	if d.Type == InvoiceTypeReceivable {
		return d.CustomerID
	}
	return d.VendorID
}

// Totals computes the invoice totals at full precision.
func (d *InvoiceDocument) Totals() InvoiceTotals {
	return CalculateInvoiceTotals(d.Lines, d.TaxRate)
}

// Invoice is the persisted shape of a submitted InvoiceDocument.
type Invoice struct {
	ID          string
	Number      string
	Type        InvoiceType
	InvoiceDate time.Time
	DueDate     time.Time
	VendorID    string
	CustomerID  string
	Subtotal    decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Status      InvoiceStatus
	Notes       string
	Lines       []InvoiceLineRecord
	CreatedBy   string
	CreatedAt   time.Time
}

// CounterpartyID returns the vendor of a payable or the customer of a receivable.
func (inv *Invoice) CounterpartyID() string {
	if inv.Type == InvoiceTypeReceivable {
		return inv.CustomerID
	}
	return inv.VendorID
}

// InvoiceLineRecord is one stored line of an Invoice.
type InvoiceLineRecord struct {
	ID          string
	InvoiceID   string
	Position    int
	AccountID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
}

// BuildInvoice converts an accepted document to its persisted shape.
// Money figures are rounded here and nowhere earlier.
func BuildInvoice(doc *InvoiceDocument, newID func() string, createdBy string, now time.Time) *Invoice {
	totals := doc.Totals().Rounded()

	inv := &Invoice{
		ID:          newID(),
		Number:      strings.TrimSpace(doc.Number),
		Type:        doc.Type,
		InvoiceDate: doc.InvoiceDate,
		DueDate:     doc.DueDate,
		Subtotal:    totals.Subtotal,
		TaxRate:     doc.TaxRate.Value(),
		TaxAmount:   totals.TaxAmount,
		TotalAmount: totals.TotalAmount,
		PaidAmount:  decimal.Zero,
		Status:      InvoiceStatusDraft,
		Notes:       doc.Notes,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
	if doc.Type == InvoiceTypeReceivable {
		inv.CustomerID = strings.TrimSpace(doc.CustomerID)
	} else {
		inv.VendorID = strings.TrimSpace(doc.VendorID)
	}

	for i, line := range doc.Lines {
		inv.Lines = append(inv.Lines, InvoiceLineRecord{
			ID:          newID(),
			InvoiceID:   inv.ID,
			Position:    i + 1,
			AccountID:   line.AccountID,
			Description: line.Description,
			Quantity:    line.Quantity.NonNegative().Exact(),
			UnitPrice:   line.UnitPrice.NonNegative().Value(),
			Amount:      RoundCurrency(line.Amount()),
		})
	}

	return inv
}

// BudgetStatus is the lifecycle state of a stored budget.
type BudgetStatus string

const (
	BudgetStatusDraft  BudgetStatus = "draft"
	BudgetStatusActive BudgetStatus = "active"
	BudgetStatusClosed BudgetStatus = "closed"
)

// BudgetDocument is a budget being composed.
type BudgetDocument struct {
	Name        string    `json:"budget_name"`
	Description string    `json:"description,omitempty"`
	FiscalYear  int       `json:"fiscal_year"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TotalAmount Amount    `json:"total_amount"`
}

// Budget is the persisted shape of a submitted BudgetDocument.
type Budget struct {
	ID          string
	Name        string
	Description string
	FiscalYear  int
	StartDate   time.Time
	EndDate     time.Time
	TotalAmount decimal.Decimal
	Status      BudgetStatus
	CreatedBy   string
	CreatedAt   time.Time
}

// BuildBudget converts an accepted document to its persisted shape.
func BuildBudget(doc *BudgetDocument, id, createdBy string, now time.Time) *Budget {
	return &Budget{
		ID:          id,
		Name:        strings.TrimSpace(doc.Name),
		Description: doc.Description,
		FiscalYear:  doc.FiscalYear,
		StartDate:   doc.StartDate,
		EndDate:     doc.EndDate,
		TotalAmount: doc.TotalAmount.NonNegative().Value(),
		Status:      BudgetStatusDraft,
		CreatedBy:   createdBy,
		CreatedAt:   now,
	}
}

// Draft is a server-held transaction editing session.
type Draft struct {
	ID        string              `json:"id"`
	Document  TransactionDocument `json:"document"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}
