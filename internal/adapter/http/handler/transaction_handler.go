package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Preview(ctx context.Context, doc *domain.TransactionDocument) (domain.Balance, domain.Decision)
	Submit(ctx context.Context, doc *domain.TransactionDocument) (*domain.Transaction, error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
}

// TransactionHandler handles transaction and journal entry requests.
type TransactionHandler struct {
	transactionUC TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC}
}

// Preview reconciles the lines and reports the gate decision without saving.
func (h *TransactionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeTransaction(w, r)
	if !ok {
		return
	}

	balance, decision := h.transactionUC.Preview(r.Context(), doc)

	writeJSON(w, http.StatusOK, dto.TransactionPreviewResponse{
		Balance:  dto.BalanceFromDomain(balance),
		Decision: dto.DecisionFromDomain(decision),
	})
}

// Create submits a transaction.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeTransaction(w, r)
	if !ok {
		return
	}

	txn, err := h.transactionUC.Submit(r.Context(), doc)
	if err != nil {
		writeDomainError(w, "failed to submit transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Get retrieves a stored transaction.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.transactionUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

func decodeTransaction(w http.ResponseWriter, r *http.Request) (*domain.TransactionDocument, bool) {
	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	doc, err := req.ToDocument()
	if err != nil {
		writeDomainError(w, "invalid transaction", err)
		return nil, false
	}

	return doc, true
}
