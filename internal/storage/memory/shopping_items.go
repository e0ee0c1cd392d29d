package memory

import (
	"context"
	"sync"

	"github.com/mealbuddy/server/internal/storage"
)

// ShoppingItemsMemoryStorage keeps each user's shopping list as one slice,
// replaced as a whole.
type ShoppingItemsMemoryStorage struct {
	mu      sync.RWMutex
	byOwner map[string][]storage.ShoppingItem
}

func NewShoppingItemsMemoryStorage() *ShoppingItemsMemoryStorage {
	return &ShoppingItemsMemoryStorage{
		byOwner: make(map[string][]storage.ShoppingItem),
	}
}

func (s *ShoppingItemsMemoryStorage) ListShoppingItems(ctx context.Context, ownerUserID string) ([]storage.ShoppingItem, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.byOwner[ownerUserID]
	out := make([]storage.ShoppingItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *ShoppingItemsMemoryStorage) ReplaceShoppingItems(ctx context.Context, ownerUserID string, items []storage.ShoppingItem) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]storage.ShoppingItem, len(items))
	copy(stored, items)
	s.byOwner[ownerUserID] = stored
	return nil
}
