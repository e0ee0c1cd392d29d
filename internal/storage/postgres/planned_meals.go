package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealbuddy/server/internal/storage"
)

// PostgresPlannedMealsStorage persists the whole plan per user. Replace is a
// delete+reinsert inside one transaction, keeping the stored collection an
// exact image of what the service computed.
type PostgresPlannedMealsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresPlannedMealsStorage(pool *pgxpool.Pool) *PostgresPlannedMealsStorage {
	return &PostgresPlannedMealsStorage{pool: pool}
}

func (s *PostgresPlannedMealsStorage) ListPlannedMeals(ctx context.Context, ownerUserID string) ([]storage.PlannedMeal, error) {
	query := `
		SELECT id, owner_user_id, recipe_id, recipe_name, recipe_image,
			meal_type, day, date, servings, calories, cook_time, notes,
			is_completed, created_at, updated_at
		FROM planned_meals
		WHERE owner_user_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meals := []storage.PlannedMeal{}
	for rows.Next() {
		var meal storage.PlannedMeal
		err := rows.Scan(
			&meal.ID,
			&meal.OwnerUserID,
			&meal.RecipeID,
			&meal.RecipeName,
			&meal.RecipeImage,
			&meal.MealType,
			&meal.Day,
			&meal.Date,
			&meal.Servings,
			&meal.Calories,
			&meal.CookTime,
			&meal.Notes,
			&meal.IsCompleted,
			&meal.CreatedAt,
			&meal.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		meals = append(meals, meal)
	}
	return meals, rows.Err()
}

func (s *PostgresPlannedMealsStorage) ReplacePlannedMeals(ctx context.Context, ownerUserID string, meals []storage.PlannedMeal) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM planned_meals WHERE owner_user_id = $1`, ownerUserID); err != nil {
		return err
	}

	query := `
		INSERT INTO planned_meals (id, owner_user_id, recipe_id, recipe_name, recipe_image,
			meal_type, day, date, servings, calories, cook_time, notes,
			is_completed, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	for position, meal := range meals {
		_, err := tx.Exec(ctx, query,
			meal.ID, ownerUserID, meal.RecipeID, meal.RecipeName, meal.RecipeImage,
			meal.MealType, meal.Day, meal.Date, meal.Servings, meal.Calories, meal.CookTime, meal.Notes,
			meal.IsCompleted, position, meal.CreatedAt, meal.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
