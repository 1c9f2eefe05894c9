package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobooks/internal/adapter/http/dto"
	"github.com/iho/gobooks/internal/domain"
	"github.com/iho/gobooks/internal/usecase"
)

// DraftService defines the behavior needed by DraftHandler.
type DraftService interface {
	Create(ctx context.Context, input usecase.CreateDraftInput) (*usecase.DraftState, error)
	Get(ctx context.Context, id string) (*usecase.DraftState, error)
	UpdateHeader(ctx context.Context, id string, input usecase.UpdateDraftHeaderInput) (*usecase.DraftState, error)
	AddLine(ctx context.Context, id string) (*usecase.DraftState, error)
	RemoveLine(ctx context.Context, id string, lineID int64) (*usecase.DraftState, error)
	UpdateLine(ctx context.Context, id string, lineID int64, field domain.LineField, value string) (*usecase.DraftState, error)
	CommitLine(ctx context.Context, id string, lineID int64, field domain.LineField) (*usecase.DraftState, error)
	Submit(ctx context.Context, id string) (*domain.Transaction, error)
	Discard(ctx context.Context, id string) error
}

// DraftHandler exposes server-held transaction editing sessions.
// Every edit answers with the whole draft and its live totals.
type DraftHandler struct {
	draftUC DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftUC DraftService) *DraftHandler {
	return &DraftHandler{draftUC: draftUC}
}

// Create opens a draft with two blank lines.
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid draft", err)
		return
	}

	state, err := h.draftUC.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, "failed to create draft", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DraftFromState(state))
}

// Get returns a draft.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.draftUC.Get(r.Context(), chi.URLParam(r, "id"))
	h.writeState(w, "failed to get draft", state, err)
}

// UpdateHeader changes the date, description, reference or notes.
func (h *DraftHandler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeDomainError(w, "invalid draft header", err)
		return
	}

	state, err := h.draftUC.UpdateHeader(r.Context(), chi.URLParam(r, "id"), input)
	h.writeState(w, "failed to update draft", state, err)
}

// AddLine appends a blank line.
func (h *DraftHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	state, err := h.draftUC.AddLine(r.Context(), chi.URLParam(r, "id"))
	h.writeState(w, "failed to add line", state, err)
}

// RemoveLine removes a line. The draft never drops below two lines.
func (h *DraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := parseLineID(w, r)
	if !ok {
		return
	}

	state, err := h.draftUC.RemoveLine(r.Context(), chi.URLParam(r, "id"), lineID)
	h.writeState(w, "failed to remove line", state, err)
}

// UpdateLine sets one field of a line to the text typed so far.
func (h *DraftHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := parseLineID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	field, err := domain.ParseLineField(req.Field)
	if err != nil {
		writeDomainError(w, "invalid line field", err)
		return
	}

	state, err := h.draftUC.UpdateLine(r.Context(), chi.URLParam(r, "id"), lineID, field, req.Value)
	h.writeState(w, "failed to update line", state, err)
}

// CommitLine canonicalizes an amount once the user leaves the field.
func (h *DraftHandler) CommitLine(w http.ResponseWriter, r *http.Request) {
	lineID, ok := parseLineID(w, r)
	if !ok {
		return
	}

	var req dto.CommitLineRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	field, err := domain.ParseLineField(req.Field)
	if err != nil {
		writeDomainError(w, "invalid line field", err)
		return
	}

	state, err := h.draftUC.CommitLine(r.Context(), chi.URLParam(r, "id"), lineID, field)
	h.writeState(w, "failed to commit line", state, err)
}

// Submit persists the draft as a transaction and drops the draft.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	txn, err := h.draftUC.Submit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to submit draft", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Discard drops a draft.
func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.draftUC.Discard(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to discard draft", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) writeState(w http.ResponseWriter, message string, state *usecase.DraftState, err error) {
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DraftFromState(state))
}

func parseLineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineID"), 10, 64)
	if err != nil || lineID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid line ID", chi.URLParam(r, "lineID"))
		return 0, false
	}
	return lineID, true
}
