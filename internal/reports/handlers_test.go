package reports

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mealbuddy/server/internal/storage"
)

type stubItemSource struct {
	items []storage.ShoppingItem
}

func (s *stubItemSource) ListForExport(ctx context.Context) ([]storage.ShoppingItem, error) {
	return s.items, nil
}

func sampleItems() []storage.ShoppingItem {
	return []storage.ShoppingItem{
		{ID: "i-1", Name: "Milk", Category: "Dairy & Eggs", Quantity: 1, Unit: "l", Status: "purchased", Priority: "medium", EstimatedPrice: 2, ActualPrice: 2.2},
		{ID: "i-2", Name: "Apples", Category: "Fruits & Vegetables", Quantity: 1.5, Unit: "kg", Status: "pending", Priority: "high", EstimatedPrice: 3},
	}
}

func newTestHandlers(items []storage.ShoppingItem) *Handlers {
	h := NewHandlers(&stubItemSource{items: items})
	h.now = func() time.Time { return time.Date(2024, 1, 19, 10, 0, 0, 0, time.UTC) }
	return h
}

func TestExportCSV(t *testing.T) {
	h := newTestHandlers(sampleItems())

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/v1/shopping/export?format=csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv, got %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "shopping-list-2024-01-19.csv") {
		t.Fatalf("unexpected content disposition: %q", got)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "name,category,quantity,unit,status,priority,estimated_price,actual_price,notes" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	// Fixed category order puts produce before dairy.
	if !strings.HasPrefix(lines[1], "Apples,") {
		t.Fatalf("expected Apples first, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "2.20") {
		t.Fatalf("expected actual price in Milk row, got %q", lines[2])
	}
}

func TestExportPDF(t *testing.T) {
	h := newTestHandlers(sampleItems())

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/v1/shopping/export?format=pdf", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected a PDF payload")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := newTestHandlers(nil)

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/v1/shopping/export?format=xlsx", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestExportEmptyListStillRenders(t *testing.T) {
	h := newTestHandlers(nil)

	rec := httptest.NewRecorder()
	h.HandleExport(rec, httptest.NewRequest(http.MethodGet, "/v1/shopping/export?format=csv", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); !strings.HasPrefix(got, "name,") {
		t.Fatalf("expected header-only CSV, got %q", got)
	}
}
