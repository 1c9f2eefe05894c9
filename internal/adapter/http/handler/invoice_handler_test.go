package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
)

type invoiceServiceStub struct {
	previewFn func(ctx context.Context, doc *domain.InvoiceDocument) (domain.InvoiceTotals, domain.Decision)
	submitFn  func(ctx context.Context, doc *domain.InvoiceDocument) (*domain.Invoice, error)
	getFn     func(ctx context.Context, id string) (*domain.Invoice, error)
}

func (s *invoiceServiceStub) Preview(ctx context.Context, doc *domain.InvoiceDocument) (domain.InvoiceTotals, domain.Decision) {
	return s.previewFn(ctx, doc)
}

func (s *invoiceServiceStub) Submit(ctx context.Context, doc *domain.InvoiceDocument) (*domain.Invoice, error) {
	return s.submitFn(ctx, doc)
}

func (s *invoiceServiceStub) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.getFn(ctx, id)
}

func TestInvoiceHandler_Preview(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceStub{
		previewFn: func(ctx context.Context, doc *domain.InvoiceDocument) (domain.InvoiceTotals, domain.Decision) {
			return doc.Totals().Rounded(), domain.Decision{
				CanSubmit: true,
				Warnings:  []domain.Reason{{Code: domain.ReasonUnusualTaxRate, Message: "Tax rate above 100%"}},
			}
		},
	})

	body := `{
		"invoice_type": "payable",
		"invoice_number": "BILL-7",
		"invoice_date": "2024-04-01",
		"vendor_id": "vendor-1",
		"tax_rate": 10,
		"lines": [{"description": "Paper", "quantity": "3", "unit_price": "33.333"}]
	}`

	rec := httptest.NewRecorder()
	handler.Preview(rec, httptest.NewRequest(http.MethodPost, "/invoices/preview", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InvoicePreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Totals.Subtotal != "99.99" || resp.Totals.TaxAmount != "10.00" || resp.Totals.TotalAmount != "109.99" {
		t.Fatalf("unexpected totals: %+v", resp.Totals)
	}
	if len(resp.Decision.Warnings) != 1 {
		t.Fatalf("expected one warning, got %+v", resp.Decision)
	}
}

func TestInvoiceHandler_Preview_UnknownType(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceStub{})

	rec := httptest.NewRecorder()
	handler.Preview(rec, httptest.NewRequest(http.MethodPost, "/invoices/preview", strings.NewReader(`{"invoice_type": "quote"}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestInvoiceHandler_Create(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceStub{
		submitFn: func(ctx context.Context, doc *domain.InvoiceDocument) (*domain.Invoice, error) {
			if len(doc.Lines) != 1 || doc.Lines[0].Description != "Subtotal" {
				t.Fatalf("expected subtotal shorthand line, got %+v", doc.Lines)
			}
			return &domain.Invoice{
				ID:          "inv-1",
				Number:      doc.Number,
				Type:        doc.Type,
				CustomerID:  doc.CustomerID,
				Subtotal:    decimal.NewFromInt(200),
				TaxRate:     decimal.NewFromInt(10),
				TaxAmount:   decimal.NewFromInt(20),
				TotalAmount: decimal.NewFromInt(220),
				Status:      domain.InvoiceStatusDraft,
			}, nil
		},
	})

	body := `{"invoice_type": "receivable", "invoice_number": "INV-9", "customer_id": "c-1", "subtotal": 200}`
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InvoiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalAmount != "220.00" || resp.CustomerID != "c-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestInvoiceHandler_Get(t *testing.T) {
	handler := NewInvoiceHandler(&invoiceServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Invoice, error) {
			return &domain.Invoice{ID: id, Type: domain.InvoiceTypePayable}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/invoices/inv-1", nil), "id", "inv-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
