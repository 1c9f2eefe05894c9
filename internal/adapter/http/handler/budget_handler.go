package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	Preview(doc *domain.BudgetDocument) domain.Decision
	Submit(ctx context.Context, doc *domain.BudgetDocument) (*domain.Budget, error)
	Get(ctx context.Context, id string) (*domain.Budget, error)
}

// BudgetHandler handles budget requests.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// Preview reports the gate decision for a budget without saving.
func (h *BudgetHandler) Preview(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeBudget(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetPreviewResponse{
		Decision: dto.DecisionFromDomain(h.budgetUC.Preview(doc)),
	})
}

// Create submits a budget.
func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeBudget(w, r)
	if !ok {
		return
	}

	budget, err := h.budgetUC.Submit(r.Context(), doc)
	if err != nil {
		writeDomainError(w, "failed to submit budget", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.BudgetFromDomain(budget))
}

// Get retrieves a stored budget.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	budget, err := h.budgetUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get budget", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(budget))
}

func decodeBudget(w http.ResponseWriter, r *http.Request) (*domain.BudgetDocument, bool) {
	var req dto.BudgetRequest
	if !decodeJSON(w, r, &req) {
		return nil, false
	}

	doc, err := req.ToDocument()
	if err != nil {
		writeDomainError(w, "invalid budget", err)
		return nil, false
	}

	return doc, true
}
