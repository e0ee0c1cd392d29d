package reports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mealbuddy/server/internal/shopping"
	"github.com/mealbuddy/server/internal/storage"
)

// ItemSource supplies the shopping items to export.
type ItemSource interface {
	ListForExport(ctx context.Context) ([]storage.ShoppingItem, error)
}

// Handlers exposes shopping-list exports over HTTP.
type Handlers struct {
	items ItemSource
	now   func() time.Time
}

// NewHandlers creates HTTP handlers for exports.
func NewHandlers(items ItemSource) *Handlers {
	return &Handlers{items: items, now: time.Now}
}

// HandleExport renders the current shopping list as a download.
// GET /v1/shopping/export?format=pdf|csv
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format != FormatPDF && format != FormatCSV {
		writeError(w, http.StatusBadRequest, "invalid_format", "format must be 'pdf' or 'csv'")
		return
	}

	items, err := h.items.ListForExport(r.Context())
	if err != nil {
		if errors.Is(err, shopping.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	data, contentType, filename, err := Render(items, format, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to render export")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
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
