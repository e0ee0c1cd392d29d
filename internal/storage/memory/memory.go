package memory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/server/internal/storage"
)

var ErrNotFound = errors.New("not found")

// MemoryStorage is the in-memory implementation of storage.Storage, used in
// local mode and in tests.
type MemoryStorage struct {
	users     *UsersMemoryStorage
	recipes   *RecipesMemoryStorage
	meals     *PlannedMealsMemoryStorage
	items     *ShoppingItemsMemoryStorage
	emailOTPs *EmailOTPMemoryStorage
	images    *RecipeImagesMemoryStorage
}

func New() *MemoryStorage {
	return &MemoryStorage{
		users:     NewUsersMemoryStorage(),
		recipes:   NewRecipesMemoryStorage(),
		meals:     NewPlannedMealsMemoryStorage(),
		items:     NewShoppingItemsMemoryStorage(),
		emailOTPs: NewEmailOTPMemoryStorage(),
		images:    NewRecipeImagesMemoryStorage(),
	}
}

func (m *MemoryStorage) Close() error {
	return nil
}

// UsersStorage methods - delegate to embedded users storage.

func (m *MemoryStorage) CreateUser(ctx context.Context, user *storage.User) error {
	return m.users.CreateUser(ctx, user)
}

func (m *MemoryStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return m.users.GetUserByEmail(ctx, email)
}

func (m *MemoryStorage) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	return m.users.GetUserByID(ctx, id)
}

func (m *MemoryStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	return m.users.UpdateUser(ctx, user)
}

// RecipesStorage methods - delegate to embedded recipes storage.

func (m *MemoryStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	return m.recipes.ListRecipes(ctx, ownerUserID)
}

func (m *MemoryStorage) GetRecipe(ctx context.Context, ownerUserID, id string) (*storage.Recipe, error) {
	return m.recipes.GetRecipe(ctx, ownerUserID, id)
}

func (m *MemoryStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return m.recipes.CreateRecipe(ctx, recipe)
}

func (m *MemoryStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return m.recipes.UpdateRecipe(ctx, recipe)
}

func (m *MemoryStorage) DeleteRecipe(ctx context.Context, ownerUserID, id string) error {
	return m.recipes.DeleteRecipe(ctx, ownerUserID, id)
}

// PlannedMealsStorage methods - delegate to embedded meals storage.

func (m *MemoryStorage) ListPlannedMeals(ctx context.Context, ownerUserID string) ([]storage.PlannedMeal, error) {
	return m.meals.ListPlannedMeals(ctx, ownerUserID)
}

func (m *MemoryStorage) ReplacePlannedMeals(ctx context.Context, ownerUserID string, meals []storage.PlannedMeal) error {
	return m.meals.ReplacePlannedMeals(ctx, ownerUserID, meals)
}

// ShoppingItemsStorage methods - delegate to embedded items storage.

func (m *MemoryStorage) ListShoppingItems(ctx context.Context, ownerUserID string) ([]storage.ShoppingItem, error) {
	return m.items.ListShoppingItems(ctx, ownerUserID)
}

func (m *MemoryStorage) ReplaceShoppingItems(ctx context.Context, ownerUserID string, items []storage.ShoppingItem) error {
	return m.items.ReplaceShoppingItems(ctx, ownerUserID, items)
}

// EmailOTPStorage methods - delegate to embedded email OTP storage.

func (m *MemoryStorage) CreateOrReplace(ctx context.Context, email, purpose, codeHash string, expiresAt, now time.Time, maxAttempts int) (uuid.UUID, error) {
	return m.emailOTPs.CreateOrReplace(ctx, email, purpose, codeHash, expiresAt, now, maxAttempts)
}

func (m *MemoryStorage) GetLatestActive(ctx context.Context, email, purpose string, now time.Time) (*storage.EmailOTP, error) {
	return m.emailOTPs.GetLatestActive(ctx, email, purpose, now)
}

func (m *MemoryStorage) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return m.emailOTPs.IncrementAttempts(ctx, id)
}

func (m *MemoryStorage) MarkUsedOrDelete(ctx context.Context, id uuid.UUID) error {
	return m.emailOTPs.MarkUsedOrDelete(ctx, id)
}

func (m *MemoryStorage) UpdateResendMeta(ctx context.Context, id uuid.UUID, lastSentAt time.Time, sendCount int) error {
	return m.emailOTPs.UpdateResendMeta(ctx, id, lastSentAt, sendCount)
}

// RecipeImagesStorage methods - delegate to embedded images storage.

func (m *MemoryStorage) PutRecipeImage(ctx context.Context, ownerUserID, recipeID string, data []byte, contentType string) error {
	return m.images.PutRecipeImage(ctx, ownerUserID, recipeID, data, contentType)
}

func (m *MemoryStorage) GetRecipeImage(ctx context.Context, ownerUserID, recipeID string) ([]byte, string, error) {
	return m.images.GetRecipeImage(ctx, ownerUserID, recipeID)
}

func (m *MemoryStorage) DeleteRecipeImage(ctx context.Context, ownerUserID, recipeID string) error {
	return m.images.DeleteRecipeImage(ctx, ownerUserID, recipeID)
}
