package memory

import (
	"context"
	"fmt"
	"sync"
)

type imageBlob struct {
	data        []byte
	contentType string
}

// RecipeImagesMemoryStorage backs the local blob mode for uploaded recipe
// images.
type RecipeImagesMemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]imageBlob // key: "ownerUserID:recipeID"
}

func NewRecipeImagesMemoryStorage() *RecipeImagesMemoryStorage {
	return &RecipeImagesMemoryStorage{
		blobs: make(map[string]imageBlob),
	}
}

func imageKey(ownerUserID, recipeID string) string {
	return fmt.Sprintf("%s:%s", ownerUserID, recipeID)
}

func (s *RecipeImagesMemoryStorage) PutRecipeImage(ctx context.Context, ownerUserID, recipeID string, data []byte, contentType string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.blobs[imageKey(ownerUserID, recipeID)] = imageBlob{data: stored, contentType: contentType}
	return nil
}

func (s *RecipeImagesMemoryStorage) GetRecipeImage(ctx context.Context, ownerUserID, recipeID string) ([]byte, string, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[imageKey(ownerUserID, recipeID)]
	if !ok {
		return nil, "", nil
	}
	return blob.data, blob.contentType, nil
}

func (s *RecipeImagesMemoryStorage) DeleteRecipeImage(ctx context.Context, ownerUserID, recipeID string) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, imageKey(ownerUserID, recipeID))
	return nil
}
