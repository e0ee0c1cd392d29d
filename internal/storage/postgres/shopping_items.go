package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealbuddy/server/internal/storage"
)

// PostgresShoppingItemsStorage persists the whole shopping list per user,
// replaced in one transaction like planned meals. Recipe provenance and
// alternatives live in jsonb columns.
type PostgresShoppingItemsStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresShoppingItemsStorage(pool *pgxpool.Pool) *PostgresShoppingItemsStorage {
	return &PostgresShoppingItemsStorage{pool: pool}
}

func (s *PostgresShoppingItemsStorage) ListShoppingItems(ctx context.Context, ownerUserID string) ([]storage.ShoppingItem, error) {
	query := `
		SELECT id, owner_user_id, name, category, quantity, unit,
			status, priority, estimated_price, actual_price, notes,
			is_from_recipe, recipe_ids, recipe_names,
			added_date, purchased_date, alternatives, created_at, updated_at
		FROM shopping_items
		WHERE owner_user_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []storage.ShoppingItem{}
	for rows.Next() {
		var (
			item             storage.ShoppingItem
			recipeIDsJSON    []byte
			recipeNamesJSON  []byte
			alternativesJSON []byte
		)
		err := rows.Scan(
			&item.ID,
			&item.OwnerUserID,
			&item.Name,
			&item.Category,
			&item.Quantity,
			&item.Unit,
			&item.Status,
			&item.Priority,
			&item.EstimatedPrice,
			&item.ActualPrice,
			&item.Notes,
			&item.IsFromRecipe,
			&recipeIDsJSON,
			&recipeNamesJSON,
			&item.AddedDate,
			&item.PurchasedDate,
			&alternativesJSON,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(recipeIDsJSON, &item.RecipeIDs); err != nil {
			return nil, fmt.Errorf("decode recipe_ids: %w", err)
		}
		if err := json.Unmarshal(recipeNamesJSON, &item.RecipeNames); err != nil {
			return nil, fmt.Errorf("decode recipe_names: %w", err)
		}
		if err := json.Unmarshal(alternativesJSON, &item.Alternatives); err != nil {
			return nil, fmt.Errorf("decode alternatives: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresShoppingItemsStorage) ReplaceShoppingItems(ctx context.Context, ownerUserID string, items []storage.ShoppingItem) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM shopping_items WHERE owner_user_id = $1`, ownerUserID); err != nil {
		return err
	}

	query := `
		INSERT INTO shopping_items (id, owner_user_id, name, category, quantity, unit,
			status, priority, estimated_price, actual_price, notes,
			is_from_recipe, recipe_ids, recipe_names,
			added_date, purchased_date, alternatives, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	for position, item := range items {
		recipeIDs, err := jsonOrEmptyList(item.RecipeIDs)
		if err != nil {
			return err
		}
		recipeNames, err := jsonOrEmptyList(item.RecipeNames)
		if err != nil {
			return err
		}
		alternatives, err := jsonOrEmptyList(item.Alternatives)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, query,
			item.ID, ownerUserID, item.Name, item.Category, item.Quantity, item.Unit,
			item.Status, item.Priority, item.EstimatedPrice, item.ActualPrice, item.Notes,
			item.IsFromRecipe, recipeIDs, recipeNames,
			item.AddedDate, item.PurchasedDate, alternatives, position, item.CreatedAt, item.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func jsonOrEmptyList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}
