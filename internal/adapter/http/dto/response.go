package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code,omitempty"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Type        string    `json:"type"`
	ParentID    *string   `json:"parent_id,omitempty"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		Code:        a.Code,
		Name:        a.Name,
		DisplayName: a.DisplayName(),
		Type:        string(a.Type),
		ParentID:    a.ParentID,
		Description: a.Description,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// BalanceResponse is the reconciled state of a set of entry lines.
type BalanceResponse struct {
	TotalDebit  string `json:"total_debit"`
	TotalCredit string `json:"total_credit"`
	Difference  string `json:"difference"`
	IsBalanced  bool   `json:"is_balanced"`
	State       string `json:"state"`
}

// BalanceFromDomain renders the balance at currency precision.
func BalanceFromDomain(b domain.Balance) BalanceResponse {
	return BalanceResponse{
		TotalDebit:  money(b.TotalDebit),
		TotalCredit: money(b.TotalCredit),
		Difference:  money(b.Difference),
		IsBalanced:  b.IsBalanced,
		State:       string(b.State()),
	}
}

// DecisionResponse is the verdict of the validation gate.
type DecisionResponse struct {
	CanSubmit bool            `json:"can_submit"`
	Reasons   []domain.Reason `json:"reasons"`
	Warnings  []domain.Reason `json:"warnings"`
}

// DecisionFromDomain never returns nil slices so clients always see arrays.
func DecisionFromDomain(d domain.Decision) DecisionResponse {
	resp := DecisionResponse{
		CanSubmit: d.CanSubmit,
		Reasons:   d.Reasons,
		Warnings:  d.Warnings,
	}
	if resp.Reasons == nil {
		resp.Reasons = []domain.Reason{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []domain.Reason{}
	}
	return resp
}

// TransactionPreviewResponse is the result of previewing a transaction.
type TransactionPreviewResponse struct {
	Balance  BalanceResponse  `json:"balance"`
	Decision DecisionResponse `json:"decision"`
}

// TransactionLineResponse represents a stored transaction line.
type TransactionLineResponse struct {
	ID          string `json:"id"`
	Position    int    `json:"position"`
	AccountID   string `json:"account_id"`
	Debit       string `json:"debit"`
	Credit      string `json:"credit"`
	Description string `json:"description,omitempty"`
}

// TransactionResponse represents a stored transaction.
type TransactionResponse struct {
	ID          string                    `json:"id"`
	Number      string                    `json:"number"`
	Kind        string                    `json:"kind"`
	Date        string                    `json:"date"`
	Description string                    `json:"description"`
	Reference   string                    `json:"reference,omitempty"`
	Notes       string                    `json:"notes,omitempty"`
	Status      string                    `json:"status"`
	TotalDebit  string                    `json:"total_debit"`
	TotalCredit string                    `json:"total_credit"`
	Lines       []TransactionLineResponse `json:"lines"`
	CreatedBy   string                    `json:"created_by,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID,
		Number:      t.Number,
		Kind:        string(t.Kind),
		Date:        date(t.Date),
		Description: t.Description,
		Reference:   t.Reference,
		Notes:       t.Notes,
		Status:      string(t.Status),
		TotalDebit:  money(t.TotalDebit),
		TotalCredit: money(t.TotalCredit),
		Lines:       make([]TransactionLineResponse, len(t.Lines)),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
	}
	for i, l := range t.Lines {
		resp.Lines[i] = TransactionLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			AccountID:   l.AccountID,
			Debit:       money(l.Debit),
			Credit:      money(l.Credit),
			Description: l.Description,
		}
	}
	return resp
}

// InvoiceTotalsResponse holds the rounded invoice totals.
type InvoiceTotalsResponse struct {
	Subtotal    string `json:"subtotal"`
	TaxAmount   string `json:"tax_amount"`
	TotalAmount string `json:"total_amount"`
}

// InvoiceTotalsFromDomain renders totals at currency precision.
func InvoiceTotalsFromDomain(t domain.InvoiceTotals) InvoiceTotalsResponse {
	return InvoiceTotalsResponse{
		Subtotal:    money(t.Subtotal),
		TaxAmount:   money(t.TaxAmount),
		TotalAmount: money(t.TotalAmount),
	}
}

// InvoicePreviewResponse is the result of previewing an invoice.
type InvoicePreviewResponse struct {
	Totals   InvoiceTotalsResponse `json:"totals"`
	Decision DecisionResponse      `json:"decision"`
}

// InvoiceLineResponse represents a stored invoice line.
type InvoiceLineResponse struct {
	ID          string `json:"id"`
	Position    int    `json:"position"`
	AccountID   string `json:"account_id,omitempty"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// InvoiceResponse represents a stored invoice.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	Number      string                `json:"invoice_number"`
	Type        string                `json:"invoice_type"`
	InvoiceDate string                `json:"invoice_date"`
	DueDate     string                `json:"due_date"`
	VendorID    string                `json:"vendor_id,omitempty"`
	CustomerID  string                `json:"customer_id,omitempty"`
	Subtotal    string                `json:"subtotal"`
	TaxRate     string                `json:"tax_rate"`
	TaxAmount   string                `json:"tax_amount"`
	TotalAmount string                `json:"total_amount"`
	PaidAmount  string                `json:"paid_amount"`
	Status      string                `json:"status"`
	Notes       string                `json:"notes,omitempty"`
	Lines       []InvoiceLineResponse `json:"lines"`
	CreatedBy   string                `json:"created_by,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// InvoiceFromDomain converts domain invoice to response.
func InvoiceFromDomain(inv *domain.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:          inv.ID,
		Number:      inv.Number,
		Type:        string(inv.Type),
		InvoiceDate: date(inv.InvoiceDate),
		DueDate:     date(inv.DueDate),
		VendorID:    inv.VendorID,
		CustomerID:  inv.CustomerID,
		Subtotal:    money(inv.Subtotal),
		TaxRate:     inv.TaxRate.String(),
		TaxAmount:   money(inv.TaxAmount),
		TotalAmount: money(inv.TotalAmount),
		PaidAmount:  money(inv.PaidAmount),
		Status:      string(inv.Status),
		Notes:       inv.Notes,
		Lines:       make([]InvoiceLineResponse, len(inv.Lines)),
		CreatedBy:   inv.CreatedBy,
		CreatedAt:   inv.CreatedAt,
	}
	for i, l := range inv.Lines {
		resp.Lines[i] = InvoiceLineResponse{
			ID:          l.ID,
			Position:    l.Position,
			AccountID:   l.AccountID,
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   money(l.UnitPrice),
			Amount:      money(l.Amount),
		}
	}
	return resp
}

// BudgetPreviewResponse is the result of previewing a budget.
type BudgetPreviewResponse struct {
	Decision DecisionResponse `json:"decision"`
}

// BudgetResponse represents a stored budget.
type BudgetResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"budget_name"`
	Description string    `json:"description,omitempty"`
	FiscalYear  int       `json:"fiscal_year"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	TotalAmount string    `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// BudgetFromDomain converts domain budget to response.
func BudgetFromDomain(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		FiscalYear:  b.FiscalYear,
		StartDate:   date(b.StartDate),
		EndDate:     date(b.EndDate),
		TotalAmount: money(b.TotalAmount),
		Status:      string(b.Status),
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
	}
}

// DraftLineResponse is one editable line of a draft with its typed text.
type DraftLineResponse struct {
	ID          int64  `json:"id"`
	AccountID   string `json:"account_id"`
	Debit       string `json:"debit_amount"`
	Credit      string `json:"credit_amount"`
	Description string `json:"description"`
}

// DraftResponse is a draft with its live totals and gate decision.
type DraftResponse struct {
	ID          string              `json:"id"`
	Kind        string              `json:"kind"`
	Date        string              `json:"date,omitempty"`
	Description string              `json:"description"`
	Reference   string              `json:"reference,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Lines       []DraftLineResponse `json:"lines"`
	Balance     BalanceResponse     `json:"balance"`
	Decision    DecisionResponse    `json:"decision"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// DraftFromState converts a draft state to response.
// Line amounts are echoed as typed so editors can show partial input.
func DraftFromState(s *usecase.DraftState) *DraftResponse {
	doc := s.Draft.Document
	lines := doc.LineSet().Lines()

	resp := &DraftResponse{
		ID:          s.Draft.ID,
		Kind:        string(doc.Kind),
		Date:        date(doc.Date),
		Description: doc.Description,
		Reference:   doc.Reference,
		Notes:       doc.Notes,
		Lines:       make([]DraftLineResponse, len(lines)),
		Balance:     BalanceFromDomain(s.Balance),
		Decision:    DecisionFromDomain(s.Decision),
		CreatedAt:   s.Draft.CreatedAt,
		UpdatedAt:   s.Draft.UpdatedAt,
	}
	for i, l := range lines {
		resp.Lines[i] = DraftLineResponse{
			ID:          l.ID,
			AccountID:   l.AccountID,
			Debit:       l.Debit.Text(),
			Credit:      l.Credit.Text(),
			Description: l.Description,
		}
	}
	return resp
}

// ErrorResponse represents an error in API responses.
// Reasons carries the gate findings when a submission is blocked.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Message string          `json:"message,omitempty"`
	Reasons []domain.Reason `json:"reasons,omitempty"`
}

func money(d decimal.Decimal) string {
	return domain.RoundCurrency(d).StringFixed(domain.CurrencyPlaces)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
