package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealbuddy/server/internal/storage"
)

// PostgresRecipesStorage stores recipes with the structured parts
// (ingredients, instructions, nutrition, tags) as jsonb columns.
type PostgresRecipesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresRecipesStorage(pool *pgxpool.Pool) *PostgresRecipesStorage {
	return &PostgresRecipesStorage{pool: pool}
}

const recipeColumns = `
	id, owner_user_id, name, description, image,
	prep_time_min, cook_time_min, difficulty, rating, calories, servings,
	category, tags, ingredients, instructions, nutrition, author,
	is_favorite, created_at, updated_at
`

func (s *PostgresRecipesStorage) ListRecipes(ctx context.Context, ownerUserID string) ([]storage.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := []storage.Recipe{}
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, rows.Err()
}

func (s *PostgresRecipesStorage) GetRecipe(ctx context.Context, ownerUserID, id string) (*storage.Recipe, error) {
	query := `
		SELECT ` + recipeColumns + `
		FROM recipes
		WHERE owner_user_id = $1 AND id = $2
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, nil
	}
	return scanRecipe(rows)
}

func scanRecipe(row pgx.Row) (*storage.Recipe, error) {
	var (
		recipe           storage.Recipe
		tagsJSON         []byte
		ingredientsJSON  []byte
		instructionsJSON []byte
		nutritionJSON    []byte
	)

	err := row.Scan(
		&recipe.ID,
		&recipe.OwnerUserID,
		&recipe.Name,
		&recipe.Description,
		&recipe.Image,
		&recipe.PrepTimeMin,
		&recipe.CookTimeMin,
		&recipe.Difficulty,
		&recipe.Rating,
		&recipe.Calories,
		&recipe.Servings,
		&recipe.Category,
		&tagsJSON,
		&ingredientsJSON,
		&instructionsJSON,
		&nutritionJSON,
		&recipe.Author,
		&recipe.IsFavorite,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsJSON, &recipe.Tags); err != nil {
		return nil, fmt.Errorf("decode recipe tags: %w", err)
	}
	if err := json.Unmarshal(ingredientsJSON, &recipe.Ingredients); err != nil {
		return nil, fmt.Errorf("decode recipe ingredients: %w", err)
	}
	if err := json.Unmarshal(instructionsJSON, &recipe.Instructions); err != nil {
		return nil, fmt.Errorf("decode recipe instructions: %w", err)
	}
	if err := json.Unmarshal(nutritionJSON, &recipe.Nutrition); err != nil {
		return nil, fmt.Errorf("decode recipe nutrition: %w", err)
	}
	return &recipe, nil
}

func recipeJSONColumns(recipe *storage.Recipe) (tags, ingredients, instructions, nutrition []byte, err error) {
	if recipe.Tags == nil {
		recipe.Tags = []string{}
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []storage.Ingredient{}
	}
	if recipe.Instructions == nil {
		recipe.Instructions = []storage.Instruction{}
	}

	if tags, err = json.Marshal(recipe.Tags); err != nil {
		return nil, nil, nil, nil, err
	}
	if ingredients, err = json.Marshal(recipe.Ingredients); err != nil {
		return nil, nil, nil, nil, err
	}
	if instructions, err = json.Marshal(recipe.Instructions); err != nil {
		return nil, nil, nil, nil, err
	}
	if nutrition, err = json.Marshal(recipe.Nutrition); err != nil {
		return nil, nil, nil, nil, err
	}
	return tags, ingredients, instructions, nutrition, nil
}

func (s *PostgresRecipesStorage) CreateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	tags, ingredients, instructions, nutrition, err := recipeJSONColumns(recipe)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recipes (` + recipeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = s.pool.Exec(ctx, query,
		recipe.ID, recipe.OwnerUserID, recipe.Name, recipe.Description, recipe.Image,
		recipe.PrepTimeMin, recipe.CookTimeMin, recipe.Difficulty, recipe.Rating, recipe.Calories, recipe.Servings,
		recipe.Category, tags, ingredients, instructions, nutrition, recipe.Author,
		recipe.IsFavorite, recipe.CreatedAt, recipe.UpdatedAt,
	)
	return err
}

func (s *PostgresRecipesStorage) UpdateRecipe(ctx context.Context, recipe *storage.Recipe) error {
	tags, ingredients, instructions, nutrition, err := recipeJSONColumns(recipe)
	if err != nil {
		return err
	}

	query := `
		UPDATE recipes
		SET name = $3, description = $4, image = $5,
			prep_time_min = $6, cook_time_min = $7, difficulty = $8, rating = $9,
			calories = $10, servings = $11, category = $12,
			tags = $13, ingredients = $14, instructions = $15, nutrition = $16,
			author = $17, is_favorite = $18, updated_at = $19
		WHERE owner_user_id = $1 AND id = $2
	`

	tag, err := s.pool.Exec(ctx, query,
		recipe.OwnerUserID, recipe.ID, recipe.Name, recipe.Description, recipe.Image,
		recipe.PrepTimeMin, recipe.CookTimeMin, recipe.Difficulty, recipe.Rating,
		recipe.Calories, recipe.Servings, recipe.Category,
		tags, ingredients, instructions, nutrition,
		recipe.Author, recipe.IsFavorite, recipe.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresRecipesStorage) DeleteRecipe(ctx context.Context, ownerUserID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE owner_user_id = $1 AND id = $2`, ownerUserID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
