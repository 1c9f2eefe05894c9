package domain

// CounterpartyKind names the directory an invoice counterparty lives in.
type CounterpartyKind string

const (
	CounterpartyVendor   CounterpartyKind = "vendor"
	CounterpartyCustomer CounterpartyKind = "customer"
)

// Counterparty is a vendor or customer owned by its directory.
// Invoices only hold its ID.
type Counterparty struct {
	ID     string
	Kind   CounterpartyKind
	Code   string
	Name   string
	Active bool
}

// DisplayName returns "code - name" when a code is set.
func (c *Counterparty) DisplayName() string {
	if c.Code == "" {
		return c.Name
	}
	return c.Code + " - " + c.Name
}

// CounterpartyKind returns the directory that holds the counterparty of t.
func (t InvoiceType) CounterpartyKind() CounterpartyKind {
	if t == InvoiceTypeReceivable {
		return CounterpartyCustomer
	}
	return CounterpartyVendor
}
