package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealbuddy/server/internal/storage"
)

var ErrNotFound = errors.New("not found")

// PostgresStorage is the Postgres implementation of storage.Storage.
type PostgresStorage struct {
	pool      *pgxpool.Pool
	users     *PostgresUsersStorage
	recipes   *PostgresRecipesStorage
	meals     *PostgresPlannedMealsStorage
	items     *PostgresShoppingItemsStorage
	emailOTPs *PostgresEmailOTPStorage
	images    *PostgresRecipeImagesStorage
}

func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStorage{
		pool:      pool,
		users:     NewPostgresUsersStorage(pool),
		recipes:   NewPostgresRecipesStorage(pool),
		meals:     NewPostgresPlannedMealsStorage(pool),
		items:     NewPostgresShoppingItemsStorage(pool),
		emailOTPs: NewPostgresEmailOTPStorage(pool),
		images:    NewPostgresRecipeImagesStorage(pool),
	}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// UsersStorage methods - delegate to embedded users storage.

func (p *PostgresStorage) CreateUser(ctx context.Context, user *storage.User) error {
	return p.users.CreateUser(ctx, user)
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return p.users.GetUserByEmail(ctx, email)
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	return p.users.GetUserByID(ctx, id)
}

func (p *PostgresStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	return p.users.UpdateUser(ctx, user)
}

// RecipesStorage methods - delegate to embedded recipes storage.

func (p *PostgresStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	return p.recipes.ListRecipes(ctx, ownerUserID)
}

func (p *PostgresStorage) GetRecipe(ctx context.Context, ownerUserID, id string) (*storage.Recipe, error) {
	return p.recipes.GetRecipe(ctx, ownerUserID, id)
}

func (p *PostgresStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return p.recipes.CreateRecipe(ctx, recipe)
}

func (p *PostgresStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	return p.recipes.UpdateRecipe(ctx, recipe)
}

func (p *PostgresStorage) DeleteRecipe(ctx context.Context, ownerUserID, id string) error {
	return p.recipes.DeleteRecipe(ctx, ownerUserID, id)
}

// PlannedMealsStorage methods - delegate to embedded meals storage.

func (p *PostgresStorage) ListPlannedMeals(ctx context.Context, ownerUserID string) ([]storage.PlannedMeal, error) {
	return p.meals.ListPlannedMeals(ctx, ownerUserID)
}

func (p *PostgresStorage) ReplacePlannedMeals(ctx context.Context, ownerUserID string, meals []storage.PlannedMeal) error {
	return p.meals.ReplacePlannedMeals(ctx, ownerUserID, meals)
}

// ShoppingItemsStorage methods - delegate to embedded items storage.

func (p *PostgresStorage) ListShoppingItems(ctx context.Context, ownerUserID string) ([]storage.ShoppingItem, error) {
	return p.items.ListShoppingItems(ctx, ownerUserID)
}

func (p *PostgresStorage) ReplaceShoppingItems(ctx context.Context, ownerUserID string, items []storage.ShoppingItem) error {
	return p.items.ReplaceShoppingItems(ctx, ownerUserID, items)
}

// EmailOTPStorage methods - delegate to embedded email OTP storage.

func (p *PostgresStorage) CreateOrReplace(ctx context.Context, email, purpose, codeHash string, expiresAt, now time.Time, maxAttempts int) (uuid.UUID, error) {
	return p.emailOTPs.CreateOrReplace(ctx, email, purpose, codeHash, expiresAt, now, maxAttempts)
}

func (p *PostgresStorage) GetLatestActive(ctx context.Context, email, purpose string, now time.Time) (*storage.EmailOTP, error) {
	return p.emailOTPs.GetLatestActive(ctx, email, purpose, now)
}

func (p *PostgresStorage) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	return p.emailOTPs.IncrementAttempts(ctx, id)
}

func (p *PostgresStorage) MarkUsedOrDelete(ctx context.Context, id uuid.UUID) error {
	return p.emailOTPs.MarkUsedOrDelete(ctx, id)
}

func (p *PostgresStorage) UpdateResendMeta(ctx context.Context, id uuid.UUID, lastSentAt time.Time, sendCount int) error {
	return p.emailOTPs.UpdateResendMeta(ctx, id, lastSentAt, sendCount)
}

// RecipeImagesStorage methods - delegate to embedded images storage.

func (p *PostgresStorage) PutRecipeImage(ctx context.Context, ownerUserID, recipeID string, data []byte, contentType string) error {
	return p.images.PutRecipeImage(ctx, ownerUserID, recipeID, data, contentType)
}

func (p *PostgresStorage) GetRecipeImage(ctx context.Context, ownerUserID, recipeID string) ([]byte, string, error) {
	return p.images.GetRecipeImage(ctx, ownerUserID, recipeID)
}

func (p *PostgresStorage) DeleteRecipeImage(ctx context.Context, ownerUserID, recipeID string) error {
	return p.images.DeleteRecipeImage(ctx, ownerUserID, recipeID)
}
