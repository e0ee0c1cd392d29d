package memory

import (
	"context"
	"sync"

	"github.com/mealbuddy/server/internal/storage"
)

// RecipesMemoryStorage keeps recipes in memory, preserving creation order
// per user.
type RecipesMemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]storage.Recipe
	byOwner map[string][]string // owner user id -> recipe ids in creation order
}

func NewRecipesMemoryStorage() *RecipesMemoryStorage {
	return &RecipesMemoryStorage{
		byID:    make(map[string]storage.Recipe),
		byOwner: make(map[string][]string),
	}
}

func (s *RecipesMemoryStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerUserID]
	recipes := make([]storage.Recipe, 0, len(ids))
	for _, id := range ids {
		if recipe, ok := s.byID[id]; ok {
			recipes = append(recipes, recipe)
		}
	}
	return recipes, nil
}

func (s *RecipesMemoryStorage) GetRecipe(ctx context.Context, ownerUserID, id string) (*storage.Recipe, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	recipe, ok := s.byID[id]
	if !ok || recipe.OwnerUserID != ownerUserID {
		return nil, nil
	}
	return &recipe, nil
}

func (s *RecipesMemoryStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[recipe.ID] = *recipe
	s.byOwner[recipe.OwnerUserID] = append(s.byOwner[recipe.OwnerUserID], recipe.ID)
	return nil
}

func (s *RecipesMemoryStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[recipe.ID]
	if !ok || existing.OwnerUserID != recipe.OwnerUserID {
		return ErrNotFound
	}
	s.byID[recipe.ID] = *recipe
	return nil
}

func (s *RecipesMemoryStorage) DeleteRecipe(ctx context.Context, ownerUserID, id string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[id]
	if !ok || existing.OwnerUserID != ownerUserID {
		return ErrNotFound
	}
	delete(s.byID, id)

	ids := s.byOwner[ownerUserID]
	for i, rid := range ids {
		if rid == id {
			s.byOwner[ownerUserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}
