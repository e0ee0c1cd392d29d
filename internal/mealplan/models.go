package mealplan

import "github.com/mealbuddy/server/internal/storage"

// ============================================================================
// Requests
// ============================================================================

// AddMealRequest is the payload for POST /v1/mealplan/meals. Calories and
// cook time default to the recipe's snapshot when omitted.
type AddMealRequest struct {
	RecipeID string `json:"recipe_id"`
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
	Servings int    `json:"servings"`
	Calories *int   `json:"calories"`
	CookTime string `json:"cook_time"`
	Notes    string `json:"notes"`
}

// UpdateMealRequest is the payload for PATCH /v1/mealplan/meals/{id}.
type UpdateMealRequest struct {
	Servings *int    `json:"servings"`
	Notes    *string `json:"notes"`
}

// MoveMealRequest is the payload for POST /v1/mealplan/meals/{id}/move.
type MoveMealRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
}

// ============================================================================
// Responses
// ============================================================================

// WeekPlanResponse is the payload for GET /v1/mealplan/week: the seven day
// views plus week aggregates and navigation dates.
type WeekPlanResponse struct {
	WeekStart string    `json:"week_start"`
	WeekEnd   string    `json:"week_end"`
	Label     string    `json:"label"`
	Days      []DayPlan `json:"days"`
	Stats     WeekStats `json:"stats"`
	PrevDate  string    `json:"prev_date"`
	NextDate  string    `json:"next_date"`
}

// MealsResponse is the full planned-meal collection after a mutation.
// Mutations on unknown ids return the collection unchanged.
type MealsResponse struct {
	Meals []storage.PlannedMeal `json:"meals"`
	Total int                   `json:"total"`
}
