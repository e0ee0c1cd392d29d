package mealplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/userctx"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid request")
	ErrRecipeNotFound = errors.New("recipe not found")
)

// Service manages the weekly meal plan. Every mutation loads the user's full
// collection, applies a pure transformation and stores the result back; the
// plan has no incremental update path.
type Service struct {
	mealsStorage   storage.PlannedMealsStorage
	recipesStorage storage.RecipesStorage
	now            func() time.Time
}

// NewService creates a new meal plan service.
func NewService(mealsStorage storage.PlannedMealsStorage, recipesStorage storage.RecipesStorage) *Service {
	return &Service{
		mealsStorage:   mealsStorage,
		recipesStorage: recipesStorage,
		now:            time.Now,
	}
}

// GetWeek builds the seven-day view of the week containing the date.
// An empty date means the current week.
func (s *Service) GetWeek(ctx context.Context, dateStr string) (*WeekPlanResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	now := s.now()
	reference := now
	if dateStr != "" {
		parsed, err := ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
		reference = parsed
	}

	meals, err := s.mealsStorage.ListPlannedMeals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}

	bounds := WeekBounds(reference)
	days := BuildWeekPlan(reference, meals, now)

	return &WeekPlanResponse{
		WeekStart: FormatDate(bounds.Start),
		WeekEnd:   FormatDate(bounds.End),
		Label:     WeekLabel(bounds.Start),
		Days:      days,
		Stats:     ComputeWeekStats(days),
		PrevDate:  FormatDate(PreviousWeek(reference)),
		NextDate:  FormatDate(NextWeek(reference)),
	}, nil
}

// Add plans a recipe into a date and slot, snapshotting the recipe's name
// and image. The snapshot is a copy; later recipe edits leave it untouched.
func (s *Service) Add(ctx context.Context, req AddMealRequest) (*storage.PlannedMeal, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if !isValidMealType(req.MealType) {
		return nil, fmt.Errorf("%w: meal_type must be one of breakfast, lunch, dinner, snack", ErrInvalidRequest)
	}

	servings := req.Servings
	if servings <= 0 {
		servings = 1
	}

	var ref RecipeRef
	calories := 0
	cookTime := req.CookTime
	if req.RecipeID != "" {
		recipe, err := s.recipesStorage.GetRecipe(ctx, userID, req.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("get recipe: %w", err)
		}
		if recipe == nil {
			return nil, ErrRecipeNotFound
		}
		ref = RecipeRef{ID: recipe.ID, Name: recipe.Name, Image: recipe.Image}
		calories = recipe.Calories
		if cookTime == "" && recipe.CookTimeMin > 0 {
			cookTime = fmt.Sprintf("%d min", recipe.CookTimeMin)
		}
	}
	if req.Calories != nil {
		calories = *req.Calories
	}

	meals, err := s.mealsStorage.ListPlannedMeals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}

	updated := AddMeal(meals, userID, ref, req.Date, req.MealType, servings, calories, cookTime, req.Notes, s.now().UTC())
	if err := s.mealsStorage.ReplacePlannedMeals(ctx, userID, updated); err != nil {
		return nil, fmt.Errorf("replace planned meals: %w", err)
	}

	created := updated[len(updated)-1]
	return &created, nil
}

// Remove drops a meal from the plan. Unknown ids are a no-op.
func (s *Service) Remove(ctx context.Context, mealID string) error {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	meals, err := s.mealsStorage.ListPlannedMeals(ctx, userID)
	if err != nil {
		return fmt.Errorf("list planned meals: %w", err)
	}

	updated := RemoveMeal(meals, mealID)
	if err := s.mealsStorage.ReplacePlannedMeals(ctx, userID, updated); err != nil {
		return fmt.Errorf("replace planned meals: %w", err)
	}
	return nil
}

// Toggle flips the completion flag of a meal.
func (s *Service) Toggle(ctx context.Context, mealID string) (*MealsResponse, error) {
	return s.mutate(ctx, func(meals []storage.PlannedMeal, now time.Time) []storage.PlannedMeal {
		return ToggleCompleted(meals, mealID, now)
	})
}

// Update applies a partial update (servings, notes) to a meal.
func (s *Service) Update(ctx context.Context, mealID string, req UpdateMealRequest) (*MealsResponse, error) {
	if req.Servings != nil && *req.Servings <= 0 {
		return nil, fmt.Errorf("%w: servings must be positive", ErrInvalidRequest)
	}

	return s.mutate(ctx, func(meals []storage.PlannedMeal, now time.Time) []storage.PlannedMeal {
		if req.Servings != nil {
			meals = UpdateServings(meals, mealID, *req.Servings, now)
		}
		if req.Notes != nil {
			out := make([]storage.PlannedMeal, len(meals))
			for i, meal := range meals {
				if meal.ID == mealID {
					meal.Notes = *req.Notes
					meal.UpdatedAt = now
				}
				out[i] = meal
			}
			meals = out
		}
		return meals
	})
}

// Move reassigns a meal to a new date and slot. Date, slot and the derived
// weekday change together.
func (s *Service) Move(ctx context.Context, mealID string, req MoveMealRequest) (*MealsResponse, error) {
	if _, err := ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if !isValidMealType(req.MealType) {
		return nil, fmt.Errorf("%w: meal_type must be one of breakfast, lunch, dinner, snack", ErrInvalidRequest)
	}

	return s.mutate(ctx, func(meals []storage.PlannedMeal, now time.Time) []storage.PlannedMeal {
		return MoveMeal(meals, mealID, req.Date, req.MealType, now)
	})
}

func (s *Service) mutate(ctx context.Context, transform func([]storage.PlannedMeal, time.Time) []storage.PlannedMeal) (*MealsResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	meals, err := s.mealsStorage.ListPlannedMeals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}

	updated := transform(meals, s.now().UTC())
	if err := s.mealsStorage.ReplacePlannedMeals(ctx, userID, updated); err != nil {
		return nil, fmt.Errorf("replace planned meals: %w", err)
	}

	return &MealsResponse{Meals: updated, Total: len(updated)}, nil
}

func isValidMealType(mealType string) bool {
	for _, t := range MealTypes {
		if t == mealType {
			return true
		}
	}
	return false
}
