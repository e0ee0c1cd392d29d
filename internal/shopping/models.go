package shopping

import "github.com/mealbuddy/server/internal/storage"

// ============================================================================
// Requests
// ============================================================================

// CreateItemRequest is the payload for POST /v1/shopping/items.
type CreateItemRequest struct {
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	EstimatedPrice float64  `json:"estimated_price"`
	Notes          string   `json:"notes"`
	Alternatives   []string `json:"alternatives"`
}

// UpdateItemRequest is the payload for PATCH /v1/shopping/items/{id}.
// Nil fields are left untouched.
type UpdateItemRequest struct {
	Name           *string   `json:"name"`
	Category       *string   `json:"category"`
	Quantity       *float64  `json:"quantity"`
	Unit           *string   `json:"unit"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority"`
	EstimatedPrice *float64  `json:"estimated_price"`
	ActualPrice    *float64  `json:"actual_price"`
	Notes          *string   `json:"notes"`
	Alternatives   *[]string `json:"alternatives"`
}

// GenerateRequest is the payload for POST /v1/shopping/generate. Either the
// week containing Date or an explicit meal id selection feeds the generator.
type GenerateRequest struct {
	Date    string   `json:"date"`
	MealIDs []string `json:"meal_ids"`
}

// ============================================================================
// Responses
// ============================================================================

// ItemsResponse is the flat item collection.
type ItemsResponse struct {
	Items []storage.ShoppingItem `json:"items"`
	Total int                    `json:"total"`
}

// GroupedResponse is the category-bucketed view of the list.
type GroupedResponse struct {
	Buckets []CategoryBucket `json:"buckets"`
	Total   int              `json:"total"`
}

// SummaryResponse carries the collection-level stats plus the per-category
// and per-priority breakdowns.
type SummaryResponse struct {
	Stats      Stats                   `json:"stats"`
	Categories map[string]CategoryStat `json:"categories"`
	Priorities map[string]PriorityStat `json:"priorities"`
}

// GenerateResponse reports the items appended by list generation.
type GenerateResponse struct {
	Created      []storage.ShoppingItem `json:"created"`
	CreatedCount int                    `json:"created_count"`
	Total        int                    `json:"total"`
}
