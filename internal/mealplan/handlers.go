package mealplan

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Handlers exposes the meal plan service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates HTTP handlers for the meal plan.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleGetWeek returns the week plan containing the given date.
// GET /v1/mealplan/week?date=YYYY-MM-DD
func (h *Handlers) HandleGetWeek(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	resp, err := h.service.GetWeek(r.Context(), date)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleAddMeal plans a recipe into a date and slot.
// POST /v1/mealplan/meals
func (h *Handlers) HandleAddMeal(w http.ResponseWriter, r *http.Request) {
	var req AddMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	meal, err := h.service.Add(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meal)
}

// HandleRemoveMeal drops a meal from the plan. Unknown ids are a no-op.
// DELETE /v1/mealplan/meals/{id}
func (h *Handlers) HandleRemoveMeal(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Remove(r.Context(), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleMeal flips a meal's completion flag.
// POST /v1/mealplan/meals/{id}/toggle
func (h *Handlers) HandleToggleMeal(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Toggle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdateMeal applies a partial update to a meal.
// PATCH /v1/mealplan/meals/{id}
func (h *Handlers) HandleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	var req UpdateMealRequest
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

// HandleMoveMeal reassigns a meal to a new date and slot.
// POST /v1/mealplan/meals/{id}/move
func (h *Handlers) HandleMoveMeal(w http.ResponseWriter, r *http.Request) {
	var req MoveMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.service.Move(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// Error handling
// ============================================================================

func (h *Handlers) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	case errors.Is(err, ErrRecipeNotFound):
		writeError(w, http.StatusNotFound, "recipe_not_found", "recipe not found")
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
