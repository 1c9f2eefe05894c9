package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
)

// InvoiceService defines the behavior needed by InvoiceHandler.
type InvoiceService interface {
	Preview(ctx context.Context, doc *domain.InvoiceDocument) (domain.InvoiceTotals, domain.Decision)
	Submit(ctx context.Context, doc *domain.InvoiceDocument) (*domain.Invoice, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
}

// InvoiceHandler handles payable and receivable invoice requests.
type InvoiceHandler struct {
	invoiceUC InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceUC InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceUC: invoiceUC}
}

// Preview computes rounded totals and the gate decision without saving.
func (h *InvoiceHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeInvoice(w, r)
	if !ok {
		return
	}

	totals, decision := h.invoiceUC.Preview(r.Context(), doc)

	writeJSON(w, http.StatusOK, dto.InvoicePreviewResponse{
		Totals:   dto.InvoiceTotalsFromDomain(totals),
		Decision: dto.DecisionFromDomain(decision),
	})
}

// Create submits an invoice.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeInvoice(w, r)
	if !ok {
		return
	}

	invoice, err := h.invoiceUC.Submit(r.Context(), doc)
	if err != nil {
		writeDomainError(w, "failed to submit invoice", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InvoiceFromDomain(invoice))
}

// Get retrieves a stored invoice.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoiceUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get invoice", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.InvoiceFromDomain(invoice))
}

func decodeInvoice(w http.ResponseWriter, r *http.Request) (*domain.InvoiceDocument, bool) {
	var req dto.InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	doc, err := req.ToDocument()
	if err != nil {
		writeDomainError(w, "invalid invoice", err)
		return nil, false
	}

	return doc, true
}
