package recipes

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// Handlers exposes the recipes service over HTTP.
type Handlers struct {
	service        *Service
	uploadMaxBytes int64
	allowedMime    map[string]bool
}

// NewHandlers creates HTTP handlers for recipe management. uploadMaxMB
// bounds image uploads; allowedMime is the comma-separated MIME allow list.
func NewHandlers(service *Service, uploadMaxMB int, allowedMime string) *Handlers {
	allowed := make(map[string]bool)
	for _, m := range strings.Split(allowedMime, ",") {
		m = strings.TrimSpace(strings.ToLower(m))
		if m != "" {
			allowed[m] = true
		}
	}
	if uploadMaxMB <= 0 {
		uploadMaxMB = 10
	}
	return &Handlers{
		service:        service,
		uploadMaxBytes: int64(uploadMaxMB) * 1024 * 1024,
		allowedMime:    allowed,
	}
}

// HandleList returns the user's recipes, optionally filtered.
// GET /v1/recipes?q=&category=&difficulty=&max_cook_minutes=&min_rating=&favorites=1
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := Filters{
		Search:     strings.TrimSpace(q.Get("q")),
		Category:   strings.TrimSpace(q.Get("category")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
	}
	if raw := strings.TrimSpace(q.Get("max_cook_minutes")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "max_cook_minutes must be a non-negative integer")
			return
		}
		filters.MaxCookMinutes = v
	}
	if raw := strings.TrimSpace(q.Get("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "min_rating must be a non-negative number")
			return
		}
		filters.MinRating = v
	}
	filters.FavoritesOnly = q.Get("favorites") == "1" || q.Get("favorites") == "true"

	resp, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGet returns one recipe.
// GET /v1/recipes/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleCreate stores a new recipe.
// POST /v1/recipes
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleUpdate applies a partial update to a recipe.
// PATCH /v1/recipes/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRecipeRequest
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

// HandleDelete removes a recipe.
// DELETE /v1/recipes/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleFavorite flips the favorite flag.
// POST /v1/recipes/{id}/favorite
func (h *Handlers) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleUploadImage accepts a multipart image upload for a recipe.
// POST /v1/recipes/{id}/image  (multipart field "image")
func (h *Handlers) HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxBytes)
	if err := r.ParseMultipartForm(h.uploadMaxBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "image exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart field 'image' is required")
		return
	}
	defer file.Close()

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if len(h.allowedMime) > 0 && !h.allowedMime[contentType] {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "image content type is not allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "failed to read image payload")
		return
	}

	imageURL, err := h.service.UploadImage(r.Context(), r.PathValue("id"), data, contentType)
	if err != nil {
		h.handleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadImageResponse{ImageURL: imageURL})
}

// HandleGetImage serves a locally stored recipe image.
// GET /v1/recipes/{id}/image
func (h *Handlers) HandleGetImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.service.GetImage(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, err)
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
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
	case errors.Is(err, ErrImageNotFound):
		writeError(w, http.StatusNotFound, "image_not_found", "recipe image not found")
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
