package shopping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Handlers exposes the shopping list service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates HTTP handlers for the shopping list.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleListItems returns the item collection, flat or category-grouped.
// GET /v1/shopping/items?grouped=1&category=&status=&priority=&q=
func (h *Handlers) HandleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := Filters{
		Category:   strings.TrimSpace(q.Get("category")),
		Status:     strings.TrimSpace(q.Get("status")),
		Priority:   strings.TrimSpace(q.Get("priority")),
		SearchTerm: strings.TrimSpace(q.Get("q")),
	}
	if filters.Status != "" && !isValidStatus(filters.Status) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown status filter")
		return
	}
	if filters.Priority != "" && !isValidPriority(filters.Priority) {
		writeError(w, http.StatusBadRequest, "invalid_request", "unknown priority filter")
		return
	}

	if q.Get("grouped") == "1" || q.Get("grouped") == "true" {
		resp, err := h.service.ListGrouped(r.Context(), filters)
		if err != nil {
			h.handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	resp, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSummary returns the stats block plus category and priority
// breakdowns.
// GET /v1/shopping/summary
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreateItem appends a manually added item.
// POST /v1/shopping/items
func (h *Handlers) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	item, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleUpdateItem applies a partial update to an item.
// PATCH /v1/shopping/items/{id}
func (h *Handlers) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.service.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDeleteItem drops an item. Unknown ids are a no-op.
// DELETE /v1/shopping/items/{id}
func (h *Handlers) HandleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdvanceItem rotates an item's status one click forward.
// POST /v1/shopping/items/{id}/advance
func (h *Handlers) HandleAdvanceItem(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGenerate expands planned-meal recipes into shopping items.
// POST /v1/shopping/generate
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ============================================================================
// Error handling
// ============================================================================

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, ErrItemOutsideRotation):
		writeError(w, http.StatusConflict, "item_unavailable", "unavailable items are outside the status rotation")
	case errors.Is(err, ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// ============================================================================
// Helpers
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
