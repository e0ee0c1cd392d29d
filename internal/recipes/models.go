package recipes

import (
	"time"

	"github.com/mealbuddy/server/internal/storage"
)

// Difficulty levels a recipe may carry.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ============================================================================
// DTOs
// ============================================================================

// RecipeDTO represents a recipe for API responses.
type RecipeDTO struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Image        string                `json:"image"`
	PrepTimeMin  int                   `json:"prep_time_min"`
	CookTimeMin  int                   `json:"cook_time_min"`
	Difficulty   string                `json:"difficulty"`
	Rating       float64               `json:"rating"`
	Calories     int                   `json:"calories"`
	Servings     int                   `json:"servings"`
	Category     string                `json:"category"`
	Tags         []string              `json:"tags"`
	Ingredients  []storage.Ingredient  `json:"ingredients"`
	Instructions []storage.Instruction `json:"instructions"`
	Nutrition    storage.NutritionInfo `json:"nutrition"`
	Author       string                `json:"author"`
	IsFavorite   bool                  `json:"is_favorite"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

func toDTO(r storage.Recipe) RecipeDTO {
	dto := RecipeDTO{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		Image:        r.Image,
		PrepTimeMin:  r.PrepTimeMin,
		CookTimeMin:  r.CookTimeMin,
		Difficulty:   r.Difficulty,
		Rating:       r.Rating,
		Calories:     r.Calories,
		Servings:     r.Servings,
		Category:     r.Category,
		Tags:         r.Tags,
		Ingredients:  r.Ingredients,
		Instructions: r.Instructions,
		Nutrition:    r.Nutrition,
		Author:       r.Author,
		IsFavorite:   r.IsFavorite,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if dto.Ingredients == nil {
		dto.Ingredients = []storage.Ingredient{}
	}
	if dto.Instructions == nil {
		dto.Instructions = []storage.Instruction{}
	}
	return dto
}

// ============================================================================
// Requests
// ============================================================================

// CreateRecipeRequest is the payload for POST /v1/recipes.
type CreateRecipeRequest struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Image        string                `json:"image"`
	PrepTimeMin  int                   `json:"prep_time_min"`
	CookTimeMin  int                   `json:"cook_time_min"`
	Difficulty   string                `json:"difficulty"`
	Rating       float64               `json:"rating"`
	Calories     int                   `json:"calories"`
	Servings     int                   `json:"servings"`
	Category     string                `json:"category"`
	Tags         []string              `json:"tags"`
	Ingredients  []storage.Ingredient  `json:"ingredients"`
	Instructions []storage.Instruction `json:"instructions"`
	Nutrition    storage.NutritionInfo `json:"nutrition"`
	Author       string                `json:"author"`
}

// UpdateRecipeRequest is the payload for PATCH /v1/recipes/{id}.
// Nil fields are left untouched.
type UpdateRecipeRequest struct {
	Name         *string                `json:"name"`
	Description  *string                `json:"description"`
	Image        *string                `json:"image"`
	PrepTimeMin  *int                   `json:"prep_time_min"`
	CookTimeMin  *int                   `json:"cook_time_min"`
	Difficulty   *string                `json:"difficulty"`
	Rating       *float64               `json:"rating"`
	Calories     *int                   `json:"calories"`
	Servings     *int                   `json:"servings"`
	Category     *string                `json:"category"`
	Tags         *[]string              `json:"tags"`
	Ingredients  *[]storage.Ingredient  `json:"ingredients"`
	Instructions *[]storage.Instruction `json:"instructions"`
	Nutrition    *storage.NutritionInfo `json:"nutrition"`
	Author       *string                `json:"author"`
}

// ============================================================================
// Responses
// ============================================================================

// ListResponse is the payload for GET /v1/recipes.
type ListResponse struct {
	Recipes []RecipeDTO `json:"recipes"`
	Total   int         `json:"total"`
}

// UploadImageResponse is the payload for POST /v1/recipes/{id}/image.
type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}
