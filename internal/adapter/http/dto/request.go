package dto

import (
	"strings"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// EntryLineRequest is one debit or credit line of a transaction request.
type EntryLineRequest struct {
	AccountID   string        `json:"account_id"`
	Debit       domain.Amount `json:"debit"`
	Credit      domain.Amount `json:"credit"`
	Description string        `json:"description,omitempty"`
}

// TransactionRequest represents a transaction or journal entry to preview or submit.
type TransactionRequest struct {
	Kind        string             `json:"kind,omitempty"`
	Number      string             `json:"number,omitempty"`
	Date        string             `json:"date"`
	Description string             `json:"description"`
	Reference   string             `json:"reference,omitempty"`
	Notes       string             `json:"notes,omitempty"`
	Lines       []EntryLineRequest `json:"lines"`
}

// ToDocument converts the request to a transaction document.
func (r *TransactionRequest) ToDocument() (*domain.TransactionDocument, error) {
	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return nil, err
	}

	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	inputs := make([]domain.EntryLineInput, len(r.Lines))
	for i, l := range r.Lines {
		inputs[i] = domain.EntryLineInput{
			AccountID:   l.AccountID,
			Debit:       l.Debit.Text(),
			Credit:      l.Credit.Text(),
			Description: l.Description,
		}
	}

	lines, err := domain.NewEntryLineSetFrom(inputs)
	if err != nil {
		return nil, err
	}

	return &domain.TransactionDocument{
		Kind:        kind,
		Number:      r.Number,
		Date:        date,
		Description: r.Description,
		Reference:   r.Reference,
		Notes:       r.Notes,
		Lines:       lines,
	}, nil
}

// InvoiceLineRequest is one item of an invoice request.
type InvoiceLineRequest struct {
	AccountID   string        `json:"account_id,omitempty"`
	Description string        `json:"description"`
	Quantity    domain.Amount `json:"quantity"`
	UnitPrice   domain.Amount `json:"unit_price"`
}

// InvoiceRequest represents an invoice to preview or submit.
// A request without lines may carry a bare subtotal instead.
type InvoiceRequest struct {
	Type        string               `json:"invoice_type"`
	Number      string               `json:"invoice_number"`
	InvoiceDate string               `json:"invoice_date"`
	DueDate     string               `json:"due_date,omitempty"`
	VendorID    string               `json:"vendor_id,omitempty"`
	CustomerID  string               `json:"customer_id,omitempty"`
	Lines       []InvoiceLineRequest `json:"lines,omitempty"`
	Subtotal    *domain.Amount       `json:"subtotal,omitempty"`
	TaxRate     domain.TaxRate       `json:"tax_rate"`
	Notes       string               `json:"notes,omitempty"`
}

// ToDocument converts the request to an invoice document.
// An absent tax rate is left empty for the use case to default.
func (r *InvoiceRequest) ToDocument() (*domain.InvoiceDocument, error) {
	invoiceType, err := domain.ParseInvoiceType(r.Type)
	if err != nil {
		return nil, err
	}

	invoiceDate, err := domain.ParseDate(r.InvoiceDate)
	if err != nil {
		return nil, err
	}

	dueDate, err := domain.ParseDate(r.DueDate)
	if err != nil {
		return nil, err
	}

	doc := &domain.InvoiceDocument{
		Type:        invoiceType,
		Number:      r.Number,
		InvoiceDate: invoiceDate,
		DueDate:     dueDate,
		VendorID:    strings.TrimSpace(r.VendorID),
		CustomerID:  strings.TrimSpace(r.CustomerID),
		TaxRate:     r.TaxRate,
		Notes:       r.Notes,
	}

	for _, l := range r.Lines {
		doc.Lines = append(doc.Lines, domain.NewInvoiceLine(l.AccountID, l.Description, l.Quantity.Text(), l.UnitPrice.Text()))
	}
	if len(doc.Lines) == 0 && r.Subtotal != nil {
		doc.Lines = []domain.InvoiceLine{domain.SubtotalLine("", *r.Subtotal)}
	}

	return doc, nil
}

// BudgetRequest represents a budget to preview or submit.
type BudgetRequest struct {
	Name        string        `json:"budget_name"`
	Description string        `json:"description,omitempty"`
	FiscalYear  int           `json:"fiscal_year"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	TotalAmount domain.Amount `json:"total_amount"`
}

// ToDocument converts the request to a budget document.
func (r *BudgetRequest) ToDocument() (*domain.BudgetDocument, error) {
	start, err := domain.ParseDate(r.StartDate)
	if err != nil {
		return nil, err
	}

	end, err := domain.ParseDate(r.EndDate)
	if err != nil {
		return nil, err
	}

	return &domain.BudgetDocument{
		Name:        r.Name,
		Description: r.Description,
		FiscalYear:  r.FiscalYear,
		StartDate:   start,
		EndDate:     end,
		TotalAmount: r.TotalAmount,
	}, nil
}

// CreateDraftRequest represents the header of a new draft.
type CreateDraftRequest struct {
	Kind        string `json:"kind,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateDraftRequest) ToUseCaseInput() (usecase.CreateDraftInput, error) {
	kind, err := domain.ParseTransactionKind(r.Kind)
	if err != nil {
		return usecase.CreateDraftInput{}, err
	}

	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return usecase.CreateDraftInput{}, err
	}

	return usecase.CreateDraftInput{
		Kind:        kind,
		Date:        date,
		Description: r.Description,
		Reference:   r.Reference,
		Notes:       r.Notes,
	}, nil
}

// UpdateDraftRequest changes draft header fields. Absent fields are kept.
type UpdateDraftRequest struct {
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateDraftRequest) ToUseCaseInput() (usecase.UpdateDraftHeaderInput, error) {
	input := usecase.UpdateDraftHeaderInput{
		Description: r.Description,
		Reference:   r.Reference,
		Notes:       r.Notes,
	}

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return usecase.UpdateDraftHeaderInput{}, err
		}
		input.Date = &date
	}

	return input, nil
}

// UpdateLineRequest sets one field of a draft line to the typed text.
type UpdateLineRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// CommitLineRequest names the field whose edit has finished.
type CommitLineRequest struct {
	Field string `json:"field"`
}
