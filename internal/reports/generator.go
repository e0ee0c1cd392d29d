package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/mealbuddy/server/internal/shopping"
	"github.com/mealbuddy/server/internal/storage"
)

// Export formats.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// Render produces the shopping-list export in the requested format and
// returns the payload, its content type and a download file name.
func Render(items []storage.ShoppingItem, format string, now time.Time) ([]byte, string, string, error) {
	stamp := now.Format("2006-01-02")
	switch format {
	case FormatPDF:
		data, err := renderPDF(items, now)
		if err != nil {
			return nil, "", "", err
		}
		return data, "application/pdf", "shopping-list-" + stamp + ".pdf", nil
	case FormatCSV:
		data, err := renderCSV(items)
		if err != nil {
			return nil, "", "", err
		}
		return data, "text/csv", "shopping-list-" + stamp + ".csv", nil
	default:
		return nil, "", "", fmt.Errorf("unsupported format: %s", format)
	}
}

func renderCSV(items []storage.ShoppingItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"name", "category", "quantity", "unit", "status", "priority", "estimated_price", "actual_price", "notes"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, bucket := range shopping.BuildCategoryBuckets(items) {
		for _, item := range bucket.Items {
			row := []string{
				item.Name,
				item.Category,
				formatQuantity(item.Quantity),
				item.Unit,
				item.Status,
				item.Priority,
				formatPrice(item.EstimatedPrice),
				formatPrice(item.ActualPrice),
				item.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(items []storage.ShoppingItem, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Shopping List")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Generated "+now.Format("2 January 2006"))
	pdf.Ln(10)

	stats := shopping.ComputeStats(items)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Items: %d (completed %d, pending %d, in cart %d, unavailable %d)",
		stats.Total, stats.Completed, stats.Pending, stats.InCart, stats.Unavailable))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Completion: %.0f%%", stats.CompletionPercentage))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Estimated total: %.2f    Actual total: %.2f    Savings: %.2f",
		stats.TotalEstimated, stats.TotalActual, stats.Savings))
	pdf.Ln(10)

	for _, bucket := range shopping.BuildCategoryBuckets(items) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 7, bucket.Category)
		pdf.Ln(7)

		pdf.SetFont("Arial", "", 10)
		for _, item := range bucket.Items {
			line := fmt.Sprintf("[%s] %s", item.Status, item.Name)
			if item.Quantity > 0 {
				line += fmt.Sprintf(" - %s %s", formatQuantity(item.Quantity), item.Unit)
			}
			if item.ActualPrice > 0 {
				line += fmt.Sprintf(" (%.2f)", item.ActualPrice)
			} else if item.EstimatedPrice > 0 {
				line += fmt.Sprintf(" (est. %.2f)", item.EstimatedPrice)
			}
			pdf.Cell(0, 5, line)
			pdf.Ln(5)
		}

		pdf.SetFont("Arial", "I", 9)
		pdf.Cell(0, 5, fmt.Sprintf("%d items, %d purchased, est. %.2f, actual %.2f",
			bucket.Total, bucket.Purchased, bucket.EstimatedTotal, bucket.ActualTotal))
		pdf.Ln(8)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

func formatPrice(p float64) string {
	if p == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", p)
}
