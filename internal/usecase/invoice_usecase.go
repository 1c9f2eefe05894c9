package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/domain"
)

// InvoiceUseCase validates and submits payable and receivable invoices.
type InvoiceUseCase struct {
	gate           *domain.Gate
	invoiceRepo    InvoiceRepository
	idGen          IDGenerator
	submitter      *Submitter
	defaultTaxRate decimal.Decimal
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(
	gate *domain.Gate,
	invoiceRepo InvoiceRepository,
	idGen IDGenerator,
	submitter *Submitter,
	defaultTaxRate decimal.Decimal,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		gate:           gate,
		invoiceRepo:    invoiceRepo,
		idGen:          idGen,
		submitter:      submitter,
		defaultTaxRate: defaultTaxRate,
	}
}

// applyDefaults fills the tax rate and due date the way the entry forms do.
func (uc *InvoiceUseCase) applyDefaults(doc *domain.InvoiceDocument) {
	if doc.TaxRate.Text() == "" {
		doc.TaxRate = domain.TaxRateOf(uc.defaultTaxRate)
	}
	if doc.DueDate.IsZero() && !doc.InvoiceDate.IsZero() {
		doc.DueDate = doc.InvoiceDate.Add(domain.DefaultPaymentTerms)
	}
}

// Preview returns rounded totals and the gate decision without persisting.
func (uc *InvoiceUseCase) Preview(ctx context.Context, doc *domain.InvoiceDocument) (domain.InvoiceTotals, domain.Decision) {
	uc.applyDefaults(doc)
	return doc.Totals().Rounded(), uc.gate.CheckInvoice(ctx, doc, false)
}

// Submit persists doc if the gate accepts it.
func (uc *InvoiceUseCase) Submit(ctx context.Context, doc *domain.InvoiceDocument) (*domain.Invoice, error) {
	uc.applyDefaults(doc)

	decision := uc.gate.CheckInvoice(ctx, doc, false)
	if !decision.CanSubmit {
		return nil, uc.submitter.reject(DocInvoice, decision)
	}

	invoice := domain.BuildInvoice(doc, uc.idGen.Generate, domain.ActorID(ctx), time.Now().UTC())
	event := domain.NewInvoiceCreatedEvent(uc.idGen.Generate(), invoice)

	err := uc.submitter.persist(ctx, DocInvoice, invoice.ID, func(ctx context.Context, tx Transaction) error {
		return uc.invoiceRepo.Create(ctx, tx, invoice)
	}, event)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}

// Get returns a stored invoice.
func (uc *InvoiceUseCase) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return uc.invoiceRepo.GetByID(ctx, id)
}
