package domain

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Reason codes reported by the Gate.
const (
	ReasonMissingField        = "missing_field"
	ReasonInvalidField        = "invalid_field"
	ReasonUnbalanced          = "unbalanced"
	ReasonUnknownAccount      = "unknown_account"
	ReasonInactiveAccount     = "inactive_account"
	ReasonAccountLookupFailed = "account_lookup_failed"
	ReasonUnknownVendor       = "unknown_vendor"
	ReasonUnknownCustomer     = "unknown_customer"
	ReasonInactiveParty       = "inactive_counterparty"
	ReasonPartyLookupFailed   = "counterparty_lookup_failed"
	ReasonNoLines             = "no_lines"
	ReasonInvalidAmount       = "invalid_amount"
	ReasonNegativeTaxRate     = "negative_tax_rate"
	ReasonUnusualTaxRate      = "unusual_tax_rate"
	ReasonDateOrder           = "date_order"
	ReasonEmptyDocument       = "empty_document"
	ReasonInFlight            = "submission_in_flight"
)

// Reason is one human-readable finding of the Gate.
type Reason struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Decision is the Gate verdict for a document.
// Reasons block submission; Warnings do not.
type Decision struct {
	CanSubmit bool     `json:"can_submit"`
	Reasons   []Reason `json:"reasons"`
	Warnings  []Reason `json:"warnings"`
}

// HasReason reports whether a blocking reason with the code is present.
func (d Decision) HasReason(code string) bool {
	for _, r := range d.Reasons {
		if r.Code == code {
			return true
		}
	}
	return false
}

// HasWarning reports whether a warning with the code is present.
func (d Decision) HasWarning(code string) bool {
	for _, r := range d.Warnings {
		if r.Code == code {
			return true
		}
	}
	return false
}

type decisionBuilder struct {
	reasons  []Reason
	warnings []Reason
}

func (b *decisionBuilder) block(code, field, format string, args ...any) {
	b.reasons = append(b.reasons, Reason{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (b *decisionBuilder) warn(code, field, format string, args ...any) {
	b.warnings = append(b.warnings, Reason{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (b *decisionBuilder) decision(inFlight bool) Decision {
	if inFlight {
		b.block(ReasonInFlight, "", "A submission for this document is already in progress")
	}
	return Decision{
		CanSubmit: len(b.reasons) == 0,
		Reasons:   append([]Reason{}, b.reasons...),
		Warnings:  append([]Reason{}, b.warnings...),
	}
}

// AccountResolver resolves account references for the Gate.
// Lookup returns ErrAccountNotFound for unknown ids.
type AccountResolver interface {
	Lookup(ctx context.Context, id string) (*Account, error)
}

// CounterpartyResolver resolves the vendor or customer of an invoice.
// LookupCounterparty returns ErrCounterpartyNotFound for unknown ids.
type CounterpartyResolver interface {
	LookupCounterparty(ctx context.Context, kind CounterpartyKind, id string) (*Counterparty, error)
}

// Gate combines required-field, account, counterparty and balance checks
// into a Decision. It never returns an error.
type Gate struct {
	accounts       AccountResolver
	counterparties CounterpartyResolver
	validate       *validator.Validate
}

// NewGate creates a Gate. A nil resolver skips the matching existence checks.
func NewGate(accounts AccountResolver, counterparties CounterpartyResolver) *Gate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Gate{accounts: accounts, counterparties: counterparties, validate: v}
}

type transactionHeader struct {
	Kind TransactionKind `json:"kind" validate:"omitempty,oneof=transaction journal" label:"Kind"`
}

type invoiceHeader struct {
	Type       InvoiceType `json:"invoice_type" validate:"required,oneof=payable receivable" label:"Invoice type"`
	Number     string      `json:"invoice_number" validate:"required" label:"Invoice number"`
	VendorID   string      `json:"vendor_id" validate:"required_if=Type payable" label:"Vendor"`
	CustomerID string      `json:"customer_id" validate:"required_if=Type receivable" label:"Customer"`
}

type budgetHeader struct {
	Name       string `json:"budget_name" validate:"required" label:"Budget name"`
	FiscalYear int    `json:"fiscal_year" validate:"gt=0" label:"Fiscal year"`
}

// CheckTransaction evaluates a transaction or journal entry.
func (g *Gate) CheckTransaction(ctx context.Context, doc *TransactionDocument, inFlight bool) Decision {
	var b decisionBuilder

	g.checkFields(&b, transactionHeader{Kind: doc.Kind})
	if doc.Date.IsZero() {
		b.block(ReasonMissingField, "date", "Date is required")
	}

	lines := doc.LineSet().Lines()
	resolved := make(map[string]bool)
	for i, line := range lines {
		if line.IsBlank() {
			continue
		}
		field := fmt.Sprintf("lines[%d].account_id", i)
		if line.AccountID == "" {
			b.block(ReasonMissingField, field, "Line %d: account is required", i+1)
			continue
		}
		g.checkAccount(ctx, &b, resolved, field, line.AccountID, i+1)
	}

	balance := Reconcile(lines)
	if !Storable(balance.TotalDebit) || !Storable(balance.TotalCredit) {
		b.block(ReasonInvalidAmount, "lines", "Transaction totals exceed the largest amount that can be recorded")
	}
	switch balance.State() {
	case BalanceEmpty:
		b.block(ReasonUnbalanced, "lines", "Transaction must be balanced with a total greater than zero")
		b.warn(ReasonEmptyDocument, "lines", "Enter at least one debit and one credit amount")
	case BalanceOutOfBalance:
		b.block(ReasonUnbalanced, "lines", "Transaction must be balanced (debits = credits); out of balance by %s",
			balance.Difference.StringFixed(CurrencyPlaces))
	}

	return b.decision(inFlight)
}

// CheckInvoice evaluates a payable or receivable invoice.
func (g *Gate) CheckInvoice(ctx context.Context, doc *InvoiceDocument, inFlight bool) Decision {
	var b decisionBuilder

	g.checkFields(&b, invoiceHeader{
		Type:       doc.Type,
		Number:     strings.TrimSpace(doc.Number),
		VendorID:   strings.TrimSpace(doc.VendorID),
		CustomerID: strings.TrimSpace(doc.CustomerID),
	})

	if doc.Type == InvoiceTypePayable || doc.Type == InvoiceTypeReceivable {
		g.checkCounterparty(ctx, &b, doc.Type.CounterpartyKind(), strings.TrimSpace(doc.CounterpartyID()))
	}

	if doc.InvoiceDate.IsZero() {
		b.block(ReasonMissingField, "invoice_date", "Invoice date is required")
	}
	if doc.DueDate.IsZero() {
		b.block(ReasonMissingField, "due_date", "Due date is required")
	}
	if !doc.InvoiceDate.IsZero() && !doc.DueDate.IsZero() && !doc.DueDate.After(doc.InvoiceDate) {
		b.block(ReasonDateOrder, "due_date", "Due date must be after invoice date")
	}

	if len(doc.Lines) == 0 {
		b.block(ReasonNoLines, "lines", "At least one line item is required")
	}
	resolved := make(map[string]bool)
	for i, line := range doc.Lines {
		if strings.TrimSpace(line.Description) == "" {
			b.block(ReasonMissingField, fmt.Sprintf("lines[%d].description", i), "Line %d: description is required", i+1)
		}
		if line.AccountID != "" {
			g.checkAccount(ctx, &b, resolved, fmt.Sprintf("lines[%d].account_id", i), line.AccountID, i+1)
		}
	}

	if doc.TaxRate.Negative() {
		b.block(ReasonNegativeTaxRate, "tax_rate", "Tax rate cannot be negative")
	} else if doc.TaxRate.Unusual() {
		b.warn(ReasonUnusualTaxRate, "tax_rate", "Tax rate of %s%% is unusually high", doc.TaxRate.Value().String())
	}

	if len(doc.Lines) > 0 {
		totals := doc.Totals().Rounded()
		if !totals.Subtotal.IsPositive() {
			b.block(ReasonInvalidAmount, "subtotal", "Subtotal must be greater than zero")
		}
		if !Storable(totals.TotalAmount) {
			b.block(ReasonInvalidAmount, "total_amount", "Invoice total exceeds the largest amount that can be recorded")
		}
	}

	return b.decision(inFlight)
}

// CheckBudget evaluates a budget.
func (g *Gate) CheckBudget(doc *BudgetDocument, inFlight bool) Decision {
	var b decisionBuilder

	g.checkFields(&b, budgetHeader{Name: strings.TrimSpace(doc.Name), FiscalYear: doc.FiscalYear})

	if doc.StartDate.IsZero() {
		b.block(ReasonMissingField, "start_date", "Start date is required")
	}
	if doc.EndDate.IsZero() {
		b.block(ReasonMissingField, "end_date", "End date is required")
	}
	if !doc.StartDate.IsZero() && !doc.EndDate.IsZero() && !doc.EndDate.After(doc.StartDate) {
		b.block(ReasonDateOrder, "end_date", "End date must be after start date")
	}

	return b.decision(inFlight)
}

func (g *Gate) checkAccount(ctx context.Context, b *decisionBuilder, resolved map[string]bool, field, id string, lineNo int) {
	if g.accounts == nil || resolved[id] {
		return
	}

	account, err := g.accounts.Lookup(ctx, id)
	switch {
	case errors.Is(err, ErrAccountNotFound) || (err == nil && account == nil):
		b.block(ReasonUnknownAccount, field, "Line %d: account %s does not exist", lineNo, id)
	case err != nil:
		b.block(ReasonAccountLookupFailed, field, "Line %d: account %s could not be verified: %v", lineNo, id, err)
		return
	case !account.Active:
		b.block(ReasonInactiveAccount, field, "Line %d: account %s is inactive", lineNo, account.DisplayName())
	}
	resolved[id] = true
}

func (g *Gate) checkCounterparty(ctx context.Context, b *decisionBuilder, kind CounterpartyKind, id string) {
	if g.counterparties == nil || id == "" {
		return
	}

	field, unknown, label := "vendor_id", ReasonUnknownVendor, "Vendor"
	if kind == CounterpartyCustomer {
		field, unknown, label = "customer_id", ReasonUnknownCustomer, "Customer"
	}

	party, err := g.counterparties.LookupCounterparty(ctx, kind, id)
	switch {
	case errors.Is(err, ErrCounterpartyNotFound) || (err == nil && party == nil):
		b.block(unknown, field, "%s %s does not exist", label, id)
	case err != nil:
		b.block(ReasonPartyLookupFailed, field, "%s %s could not be verified: %v", label, id, err)
	case !party.Active:
		b.block(ReasonInactiveParty, field, "%s %s is inactive", label, party.DisplayName())
	}
}

func (g *Gate) checkFields(b *decisionBuilder, view any) {
	err := g.validate.Struct(view)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		b.block(ReasonInvalidField, "", "%v", err)
		return
	}

	typ := reflect.TypeOf(view)
	for _, fe := range verrs {
		label := fe.Field()
		if sf, ok := typ.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}

		switch fe.Tag() {
		case "required", "required_if":
			b.block(ReasonMissingField, fe.Field(), "%s is required", label)
		case "gt":
			b.block(ReasonInvalidField, fe.Field(), "%s must be greater than %s", label, fe.Param())
		case "oneof":
			b.block(ReasonInvalidField, fe.Field(), "%s must be one of: %s", label, fe.Param())
		default:
			b.block(ReasonInvalidField, fe.Field(), "%s is invalid", label)
		}
	}
}
