package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bizdesk/internal/adapter/http/dto"
	"github.com/iho/bizdesk/internal/domain"
	"github.com/iho/bizdesk/internal/usecase"
)

// SessionService defines the behavior needed by SessionHandler.
type SessionService interface {
	OpenSession(ctx context.Context, kind domain.Kind) (string, usecase.View, error)
	CloseSession(ctx context.Context, id string) error
	View(ctx context.Context, id string) (usecase.View, error)
	Search(ctx context.Context, id, text string) (usecase.View, error)
	SetPage(ctx context.Context, id string, n int) (usecase.View, error)
	NewDraft(ctx context.Context, id string) (domain.Draft, error)
	Create(ctx context.Context, id string, draft domain.Draft) (domain.Record, usecase.View, error)
	Update(ctx context.Context, id string, recordID int64, draft domain.Draft) (domain.Record, usecase.View, error)
	BeginEdit(ctx context.Context, id string, recordID int64) (domain.Draft, usecase.View, error)
	ConfirmEdit(ctx context.Context, id string, draft domain.Draft) (domain.Record, usecase.View, error)
	CancelEdit(ctx context.Context, id string) (usecase.View, error)
	BeginDelete(ctx context.Context, id string, recordID int64) (usecase.View, error)
	ConfirmDelete(ctx context.Context, id string) (domain.Record, usecase.View, error)
	CancelDelete(ctx context.Context, id string) (usecase.View, error)
}

// SessionHandler handles table session HTTP requests.
type SessionHandler struct {
	sessionUC SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionUC SessionService) *SessionHandler {
	return &SessionHandler{sessionUC: sessionUC}
}

// Open opens a session over one collection.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	id, view, err := h.sessionUC.OpenSession(r.Context(), req.ToDomain())
	if err != nil {
		writeDomainError(w, "failed to open session", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SessionResponse{
		SessionID: id,
		View:      dto.ViewFromDomain(view),
	})
}

// Get returns the session's current view.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionUC.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get session", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

// Close discards a session.
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionUC.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, "failed to close session", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search replaces the search text.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req dto.SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	view, err := h.sessionUC.Search(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeDomainError(w, "failed to search", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

// SetPage navigates to a page.
func (h *SessionHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req dto.PageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	view, err := h.sessionUC.SetPage(r.Context(), chi.URLParam(r, "id"), req.Page)
	if err != nil {
		writeDomainError(w, "failed to change page", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

// Draft returns an empty create form.
func (h *SessionHandler) Draft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.sessionUC.NewDraft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to build draft", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DraftFromDomain(draft))
}

// CreateRecord validates and stores a new record.
func (h *SessionHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	record, view, err := h.sessionUC.Create(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeDomainError(w, "failed to create record", err)
		return
	}

	writeJSON(w, http.StatusCreated, mutationResponse(record, view))
}

// UpdateRecord replaces a record in one step.
func (h *SessionHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := parseIDParam(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record ID", err.Error())
		return
	}

	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	record, view, err := h.sessionUC.Update(r.Context(), chi.URLParam(r, "id"), recordID, draft)
	if err != nil {
		writeDomainError(w, "failed to update record", err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse(record, view))
}

// BeginEdit opens the edit form for a record.
func (h *SessionHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	recordID, err := parseIDParam(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record ID", err.Error())
		return
	}

	draft, view, err := h.sessionUC.BeginEdit(r.Context(), chi.URLParam(r, "id"), recordID)
	if err != nil {
		writeDomainError(w, "failed to begin edit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EditResponse{
		Draft: dto.DraftFromDomain(draft),
		View:  dto.ViewFromDomain(view),
	})
}

// ConfirmEdit saves the open edit form.
func (h *SessionHandler) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	record, view, err := h.sessionUC.ConfirmEdit(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeDomainError(w, "failed to save edit", err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse(record, view))
}

// CancelEdit closes the edit form.
func (h *SessionHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionUC.CancelEdit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to cancel edit", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

// BeginDelete asks for confirmation before deleting a record.
func (h *SessionHandler) BeginDelete(w http.ResponseWriter, r *http.Request) {
	recordID, err := parseIDParam(r, "recordID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record ID", err.Error())
		return
	}

	view, err := h.sessionUC.BeginDelete(r.Context(), chi.URLParam(r, "id"), recordID)
	if err != nil {
		writeDomainError(w, "failed to begin delete", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

// ConfirmDelete removes the record awaiting confirmation.
func (h *SessionHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	record, view, err := h.sessionUC.ConfirmDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to delete record", err)
		return
	}

	writeJSON(w, http.StatusOK, mutationResponse(record, view))
}

// CancelDelete dismisses the delete confirmation.
func (h *SessionHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessionUC.CancelDelete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to cancel delete", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ViewFromDomain(view))
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, bool) {
	var req dto.DraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return domain.Draft{}, false
	}

	draft, err := req.ToDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return domain.Draft{}, false
	}
	return draft, true
}

func mutationResponse(record domain.Record, view usecase.View) dto.MutationResponse {
	return dto.MutationResponse{
		Record: dto.RecordFromDomain(record),
		View:   dto.ViewFromDomain(view),
	}
}
