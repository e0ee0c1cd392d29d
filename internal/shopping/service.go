package shopping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/mealplan"
	"github.com/mealbuddy/server/internal/storage"
	"github.com/mealbuddy/server/internal/userctx"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrItemOutsideRotation = errors.New("item outside the status rotation")
)

// Service manages the shopping list. Like the meal plan, every mutation
// rewrites the user's full collection through a pure transformation.
type Service struct {
	itemsStorage   storage.ShoppingItemsStorage
	mealsStorage   storage.PlannedMealsStorage
	recipesStorage storage.RecipesStorage
	now            func() time.Time
}

// NewService creates a new shopping list service.
func NewService(itemsStorage storage.ShoppingItemsStorage, mealsStorage storage.PlannedMealsStorage, recipesStorage storage.RecipesStorage) *Service {
	return &Service{
		itemsStorage:   itemsStorage,
		mealsStorage:   mealsStorage,
		recipesStorage: recipesStorage,
		now:            time.Now,
	}
}

// List returns the filtered item collection in insertion order.
func (s *Service) List(ctx context.Context, filters Filters) (*ItemsResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}

	filtered := Filter(items, filters)
	return &ItemsResponse{Items: filtered, Total: len(filtered)}, nil
}

// ListGrouped returns the filtered collection bucketed by category, each
// bucket sorted for display.
func (s *Service) ListGrouped(ctx context.Context, filters Filters) (*GroupedResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}

	filtered := Filter(items, filters)
	return &GroupedResponse{Buckets: BuildCategoryBuckets(filtered), Total: len(filtered)}, nil
}

// Summary computes the stats block plus per-category and per-priority
// breakdowns over the full collection.
func (s *Service) Summary(ctx context.Context) (*SummaryResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}

	return &SummaryResponse{
		Stats:      ComputeStats(items),
		Categories: ComputeCategoryStats(items),
		Priorities: ComputePriorityStats(items),
	}, nil
}

// Create appends a manually added item.
func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*storage.ShoppingItem, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}
	if !isValidStatus(status) {
		return nil, fmt.Errorf("%w: status must be one of pending, in-cart, purchased, unavailable", ErrInvalidRequest)
	}
	priority := req.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !isValidPriority(priority) {
		return nil, fmt.Errorf("%w: priority must be one of low, medium, high, urgent", ErrInvalidRequest)
	}
	if req.Quantity < 0 || req.EstimatedPrice < 0 {
		return nil, fmt.Errorf("%w: quantity and estimated_price must be non-negative", ErrInvalidRequest)
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "Other"
	}
	alternatives := req.Alternatives
	if alternatives == nil {
		alternatives = []string{}
	}

	now := s.now().UTC()
	item := storage.ShoppingItem{
		ID:             uuid.New().String(),
		OwnerUserID:    userID,
		Name:           strings.TrimSpace(req.Name),
		Category:       category,
		Quantity:       req.Quantity,
		Unit:           strings.TrimSpace(req.Unit),
		Status:         status,
		Priority:       priority,
		EstimatedPrice: req.EstimatedPrice,
		Notes:          req.Notes,
		IsFromRecipe:   false,
		RecipeIDs:      []string{},
		RecipeNames:    []string{},
		AddedDate:      now.Format("2006-01-02"),
		Alternatives:   alternatives,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	items = append(items, item)
	if err := s.itemsStorage.ReplaceShoppingItems(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("replace shopping items: %w", err)
	}
	return &item, nil
}

// Update applies the non-nil fields of the request to the matching item.
// Unknown ids leave the collection unchanged.
func (s *Service) Update(ctx context.Context, itemID string, req UpdateItemRequest) (*ItemsResponse, error) {
	if req.Status != nil && !isValidStatus(*req.Status) {
		return nil, fmt.Errorf("%w: status must be one of pending, in-cart, purchased, unavailable", ErrInvalidRequest)
	}
	if req.Priority != nil && !isValidPriority(*req.Priority) {
		return nil, fmt.Errorf("%w: priority must be one of low, medium, high, urgent", ErrInvalidRequest)
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be non-negative", ErrInvalidRequest)
	}
	if (req.EstimatedPrice != nil && *req.EstimatedPrice < 0) || (req.ActualPrice != nil && *req.ActualPrice < 0) {
		return nil, fmt.Errorf("%w: prices must be non-negative", ErrInvalidRequest)
	}

	return s.mutate(ctx, func(items []storage.ShoppingItem, now time.Time) []storage.ShoppingItem {
		if req.Status != nil {
			items = SetStatus(items, itemID, *req.Status, now)
		}
		if req.Quantity != nil {
			items = SetQuantity(items, itemID, *req.Quantity, now)
		}
		if req.ActualPrice != nil {
			items = SetActualPrice(items, itemID, *req.ActualPrice, now)
		}
		if req.Notes != nil {
			items = SetNote(items, itemID, *req.Notes, now)
		}

		out := make([]storage.ShoppingItem, len(items))
		for i, item := range items {
			if item.ID == itemID {
				if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
					item.Name = strings.TrimSpace(*req.Name)
				}
				if req.Category != nil {
					item.Category = *req.Category
				}
				if req.Unit != nil {
					item.Unit = *req.Unit
				}
				if req.Priority != nil {
					item.Priority = *req.Priority
				}
				if req.EstimatedPrice != nil {
					item.EstimatedPrice = *req.EstimatedPrice
				}
				if req.Alternatives != nil {
					item.Alternatives = *req.Alternatives
				}
				item.UpdatedAt = now
			}
			out[i] = item
		}
		return out
	})
}

// Delete drops an item. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, itemID string) error {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return fmt.Errorf("list shopping items: %w", err)
	}

	updated := Remove(items, itemID)
	if err := s.itemsStorage.ReplaceShoppingItems(ctx, userID, updated); err != nil {
		return fmt.Errorf("replace shopping items: %w", err)
	}
	return nil
}

// Advance rotates an item's status one step through pending → in-cart →
// purchased. Unavailable items sit outside the rotation and are rejected;
// unknown ids leave the collection unchanged.
func (s *Service) Advance(ctx context.Context, itemID string) (*ItemsResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}

	for _, item := range items {
		if item.ID != itemID {
			continue
		}
		if item.Status == StatusUnavailable {
			return nil, ErrItemOutsideRotation
		}
		items = SetStatus(items, itemID, AdvanceStatus(item.Status), s.now().UTC())
		break
	}

	if err := s.itemsStorage.ReplaceShoppingItems(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("replace shopping items: %w", err)
	}
	return &ItemsResponse{Items: items, Total: len(items)}, nil
}

// Generate expands planned-meal recipes into shopping items and appends
// them to the list. The source meals are either the week containing the
// requested date or an explicit id selection.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if req.Date == "" && len(req.MealIDs) == 0 {
		return nil, fmt.Errorf("%w: date or meal_ids is required", ErrInvalidRequest)
	}

	meals, err := s.mealsStorage.ListPlannedMeals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list planned meals: %w", err)
	}

	var selected []storage.PlannedMeal
	if len(req.MealIDs) > 0 {
		wanted := make(map[string]bool, len(req.MealIDs))
		for _, id := range req.MealIDs {
			wanted[id] = true
		}
		for _, meal := range meals {
			if wanted[meal.ID] {
				selected = append(selected, meal)
			}
		}
	} else {
		reference, err := mealplan.ParseDate(req.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}
		bounds := mealplan.WeekBounds(reference)
		inWeek := make(map[string]bool, 7)
		for _, day := range bounds.Days {
			inWeek[mealplan.FormatDate(day)] = true
		}
		for _, meal := range meals {
			if inWeek[meal.Date] {
				selected = append(selected, meal)
			}
		}
	}

	recipesByID := make(map[string]storage.Recipe)
	for _, meal := range selected {
		if meal.RecipeID == "" {
			continue
		}
		if _, ok := recipesByID[meal.RecipeID]; ok {
			continue
		}
		recipe, err := s.recipesStorage.GetRecipe(ctx, userID, meal.RecipeID)
		if err != nil {
			return nil, fmt.Errorf("get recipe: %w", err)
		}
		if recipe == nil {
			continue
		}
		recipesByID[recipe.ID] = *recipe
	}

	created := GenerateItems(selected, recipesByID, s.now().UTC())

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	items = append(items, created...)
	if err := s.itemsStorage.ReplaceShoppingItems(ctx, userID, items); err != nil {
		return nil, fmt.Errorf("replace shopping items: %w", err)
	}

	return &GenerateResponse{Created: created, CreatedCount: len(created), Total: len(items)}, nil
}

// ListForExport returns the raw item collection for report rendering.
func (s *Service) ListForExport(ctx context.Context) ([]storage.ShoppingItem, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}
	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	return items, nil
}

func (s *Service) mutate(ctx context.Context, transform func([]storage.ShoppingItem, time.Time) []storage.ShoppingItem) (*ItemsResponse, error) {
	userID := userctx.GetUserID(ctx)
	if userID == "" {
		return nil, ErrUnauthorized
	}

	items, err := s.itemsStorage.ListShoppingItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}

	updated := transform(items, s.now().UTC())
	if err := s.itemsStorage.ReplaceShoppingItems(ctx, userID, updated); err != nil {
		return nil, fmt.Errorf("replace shopping items: %w", err)
	}
	return &ItemsResponse{Items: updated, Total: len(updated)}, nil
}

func isValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func isValidPriority(priority string) bool {
	for _, p := range Priorities {
		if p == priority {
			return true
		}
	}
	return false
}
