package domain

import "time"

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeInvoiceCreated     = "invoice.created"
	EventTypeBudgetCreated      = "budget.created"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeInvoice     = "invoice"
	AggregateTypeBudget      = "budget"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewTransactionCreatedEvent builds the event emitted with a new transaction.
func NewTransactionCreatedEvent(id string, t *Transaction) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   t.ID,
		AggregateType: AggregateTypeTransaction,
		EventType:     EventTypeTransactionCreated,
		Payload: map[string]any{
			"transaction_id":     t.ID,
			"transaction_number": t.Number,
			"kind":               string(t.Kind),
			"transaction_date":   t.Date.Format(DateLayout),
			"total_debit":        t.TotalDebit.StringFixed(CurrencyPlaces),
			"total_credit":       t.TotalCredit.StringFixed(CurrencyPlaces),
			"line_count":         len(t.Lines),
		},
		CreatedAt: t.CreatedAt,
	}
}

// NewInvoiceCreatedEvent builds the event emitted with a new invoice.
func NewInvoiceCreatedEvent(id string, inv *Invoice) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   inv.ID,
		AggregateType: AggregateTypeInvoice,
		EventType:     EventTypeInvoiceCreated,
		Payload: map[string]any{
			"invoice_id":      inv.ID,
			"invoice_number":  inv.Number,
			"invoice_type":    string(inv.Type),
			"counterparty_id": inv.CounterpartyID(),
			"due_date":        inv.DueDate.Format(DateLayout),
			"total_amount":    inv.TotalAmount.StringFixed(CurrencyPlaces),
		},
		CreatedAt: inv.CreatedAt,
	}
}

// NewBudgetCreatedEvent builds the event emitted with a new budget.
func NewBudgetCreatedEvent(id string, b *Budget) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   b.ID,
		AggregateType: AggregateTypeBudget,
		EventType:     EventTypeBudgetCreated,
		Payload: map[string]any{
			"budget_id":    b.ID,
			"budget_name":  b.Name,
			"fiscal_year":  b.FiscalYear,
			"total_amount": b.TotalAmount.StringFixed(CurrencyPlaces),
		},
		CreatedAt: b.CreatedAt,
	}
}
