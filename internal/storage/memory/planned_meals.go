package memory

import (
	"context"
	"sync"

	"github.com/mealbuddy/server/internal/storage"
)

// PlannedMealsMemoryStorage keeps each user's plan as one slice, replaced
// as a whole.
type PlannedMealsMemoryStorage struct {
	mu      sync.RWMutex
	byOwner map[string][]storage.PlannedMeal
}

func NewPlannedMealsMemoryStorage() *PlannedMealsMemoryStorage {
	return &PlannedMealsMemoryStorage{
		byOwner: make(map[string][]storage.PlannedMeal),
	}
}

func (s *PlannedMealsMemoryStorage) ListPlannedMeals(ctx context.Context, ownerUserID string) ([]storage.PlannedMeal, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	meals := s.byOwner[ownerUserID]
	out := make([]storage.PlannedMeal, len(meals))
	copy(out, meals)
	return out, nil
}

func (s *PlannedMealsMemoryStorage) ReplacePlannedMeals(ctx context.Context, ownerUserID string, meals []storage.PlannedMeal) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]storage.PlannedMeal, len(meals))
	copy(stored, meals)
	s.byOwner[ownerUserID] = stored
	return nil
}
