package shopping

import (
	"sort"
	"strings"
	"time"

	"github.com/mealbuddy/server/internal/storage"
)

// Item statuses. The click rotation cycles pending → in-cart → purchased;
// unavailable is reachable only through a direct status assignment.
const (
	StatusPending     = "pending"
	StatusInCart      = "in-cart"
	StatusPurchased   = "purchased"
	StatusUnavailable = "unavailable"
)

// Item priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Statuses lists the four statuses in display order (pending first so
// actionable items surface first).
var Statuses = []string{StatusPending, StatusInCart, StatusPurchased, StatusUnavailable}

// Priorities lists the four priorities from most to least pressing.
var Priorities = []string{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// statusCycle is the fixed three-state click rotation.
var statusCycle = []string{StatusPending, StatusInCart, StatusPurchased}

// Categories is the fixed set of shopping categories, in display order.
var Categories = []string{
	"Fruits & Vegetables",
	"Meat & Fish",
	"Dairy & Eggs",
	"Grains & Pasta",
	"Bakery & Sweets",
	"Condiments & Spices",
	"Beverages",
	"Frozen",
	"Canned Goods",
	"Other",
}

// Stats summarizes a full item collection.
type Stats struct {
	Total                int     `json:"total"`
	Completed            int     `json:"completed"`
	Pending              int     `json:"pending"`
	InCart               int     `json:"in_cart"`
	Unavailable          int     `json:"unavailable"`
	CompletionPercentage float64 `json:"completion_percentage"`
	TotalEstimated       float64 `json:"total_estimated"`
	TotalActual          float64 `json:"total_actual"`
	Savings              float64 `json:"savings"`
}

// CategoryStat is the per-category breakdown. Cost sums the actual price of
// purchased items only; estimated prices are deliberately excluded here,
// unlike the collection-level Stats.
type CategoryStat struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Cost      float64 `json:"cost"`
}

// PriorityStat is the per-priority breakdown.
type PriorityStat struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// CategoryBucket is one category's slice of the list plus running totals.
type CategoryBucket struct {
	Category       string                 `json:"category"`
	Items          []storage.ShoppingItem `json:"items"`
	Total          int                    `json:"total"`
	Purchased      int                    `json:"purchased"`
	EstimatedTotal float64                `json:"estimated_total"`
	ActualTotal    float64                `json:"actual_total"`
}

// GroupByCategory partitions items by category label, preserving input order
// within each bucket. Categories without items are absent from the map, not
// present with an empty slice.
func GroupByCategory(items []storage.ShoppingItem) map[string][]storage.ShoppingItem {
	grouped := make(map[string][]storage.ShoppingItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// BuildCategoryBuckets renders the grouped view: one bucket per non-empty
// category in the fixed category order (unknown labels trail in input
// order), each bucket's items sorted for display.
func BuildCategoryBuckets(items []storage.ShoppingItem) []CategoryBucket {
	grouped := GroupByCategory(items)

	order := make([]string, 0, len(grouped))
	for _, c := range Categories {
		if _, ok := grouped[c]; ok {
			order = append(order, c)
		}
	}
	known := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}
	for _, item := range items {
		if !known[item.Category] {
			known[item.Category] = true
			order = append(order, item.Category)
		}
	}

	buckets := make([]CategoryBucket, 0, len(order))
	for _, category := range order {
		bucket := CategoryBucket{
			Category: category,
			Items:    SortForDisplay(grouped[category]),
		}
		for _, item := range grouped[category] {
			bucket.Total++
			if item.Status == StatusPurchased {
				bucket.Purchased++
			}
			bucket.EstimatedTotal += item.EstimatedPrice
			bucket.ActualTotal += item.ActualPrice
		}
		buckets = append(buckets, bucket)
	}
	return buckets
}

// ComputeStats computes the collection-level summary. The completion
// percentage is 0 for an empty collection; savings may be negative when the
// actual spend exceeds the estimate and is not clamped.
func ComputeStats(items []storage.ShoppingItem) Stats {
	var stats Stats
	stats.Total = len(items)

	for _, item := range items {
		switch item.Status {
		case StatusPurchased:
			stats.Completed++
		case StatusPending:
			stats.Pending++
		case StatusInCart:
			stats.InCart++
		case StatusUnavailable:
			stats.Unavailable++
		}
		stats.TotalEstimated += item.EstimatedPrice
		stats.TotalActual += item.ActualPrice
	}

	if stats.Total > 0 {
		stats.CompletionPercentage = float64(stats.Completed) / float64(stats.Total) * 100
	}
	stats.Savings = stats.TotalEstimated - stats.TotalActual
	return stats
}

// ComputeCategoryStats breaks the collection down by category. Cost counts
// the actual price of purchased items only.
func ComputeCategoryStats(items []storage.ShoppingItem) map[string]CategoryStat {
	stats := make(map[string]CategoryStat)
	for _, item := range items {
		s := stats[item.Category]
		s.Total++
		if item.Status == StatusPurchased {
			s.Completed++
			s.Cost += item.ActualPrice
		}
		stats[item.Category] = s
	}
	return stats
}

// ComputePriorityStats breaks the collection down by priority level.
func ComputePriorityStats(items []storage.ShoppingItem) map[string]PriorityStat {
	stats := make(map[string]PriorityStat)
	for _, item := range items {
		s := stats[item.Priority]
		s.Total++
		if item.Status == StatusPurchased {
			s.Completed++
		}
		stats[item.Priority] = s
	}
	return stats
}

// AdvanceStatus returns the next status in the pending → in-cart → purchased
// rotation. Unavailable is outside the cycle; callers must not route
// unavailable items through the rotation.
func AdvanceStatus(current string) string {
	idx := -1
	for i, s := range statusCycle {
		if s == current {
			idx = i
			break
		}
	}
	return statusCycle[(idx+1)%len(statusCycle)]
}

// SetStatus assigns a status to the matching item. Unknown ids are a no-op.
func SetStatus(items []storage.ShoppingItem, id, status string, now time.Time) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, len(items))
	for i, item := range items {
		if item.ID == id {
			item.Status = status
			if status == StatusPurchased && item.PurchasedDate == "" {
				item.PurchasedDate = now.Format("2006-01-02")
			}
			item.UpdatedAt = now
		}
		out[i] = item
	}
	return out
}

// SetQuantity updates the quantity of the matching item.
func SetQuantity(items []storage.ShoppingItem, id string, quantity float64, now time.Time) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, len(items))
	for i, item := range items {
		if item.ID == id {
			item.Quantity = quantity
			item.UpdatedAt = now
		}
		out[i] = item
	}
	return out
}

// SetActualPrice records the price actually paid for the matching item.
func SetActualPrice(items []storage.ShoppingItem, id string, price float64, now time.Time) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, len(items))
	for i, item := range items {
		if item.ID == id {
			item.ActualPrice = price
			item.UpdatedAt = now
		}
		out[i] = item
	}
	return out
}

// SetNote replaces the note of the matching item.
func SetNote(items []storage.ShoppingItem, id, note string, now time.Time) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, len(items))
	for i, item := range items {
		if item.ID == id {
			item.Notes = note
			item.UpdatedAt = now
		}
		out[i] = item
	}
	return out
}

// Remove drops the matching item. Unknown ids are a no-op.
func Remove(items []storage.ShoppingItem, id string) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, 0, len(items))
	for _, item := range items {
		if item.ID == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

// SortForDisplay orders a category's items for rendering: status first in
// the order pending, in-cart, purchased, unavailable, then priority from
// urgent down to low. The sort is stable, so equal items keep input order.
func SortForDisplay(items []storage.ShoppingItem) []storage.ShoppingItem {
	out := make([]storage.ShoppingItem, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		si, sj := statusRank(out[i].Status), statusRank(out[j].Status)
		if si != sj {
			return si < sj
		}
		return priorityRank(out[i].Priority) < priorityRank(out[j].Priority)
	})
	return out
}

func statusRank(status string) int {
	for i, s := range Statuses {
		if s == status {
			return i
		}
	}
	return len(Statuses)
}

func priorityRank(priority string) int {
	for i, p := range Priorities {
		if p == priority {
			return i
		}
	}
	return len(Priorities)
}

// Filters narrows a collection for the list views. Zero values mean "no
// constraint"; the search term matches name or notes case-insensitively.
type Filters struct {
	Category   string
	Status     string
	Priority   string
	SearchTerm string
}

// Filter applies the filter set preserving input order.
func Filter(items []storage.ShoppingItem, f Filters) []storage.ShoppingItem {
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))

	out := make([]storage.ShoppingItem, 0, len(items))
	for _, item := range items {
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Priority != "" && item.Priority != f.Priority {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(item.Name), term) &&
			!strings.Contains(strings.ToLower(item.Notes), term) {
			continue
		}
		out = append(out, item)
	}
	return out
}
