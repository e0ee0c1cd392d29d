package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecipeImagesStorage keeps uploaded recipe images in a bytea column
// when the blob store runs in local mode.
type PostgresRecipeImagesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresRecipeImagesStorage(pool *pgxpool.Pool) *PostgresRecipeImagesStorage {
	return &PostgresRecipeImagesStorage{pool: pool}
}

func (s *PostgresRecipeImagesStorage) PutRecipeImage(ctx context.Context, ownerUserID, recipeID string, data []byte, contentType string) error {
	query := `
		INSERT INTO recipe_images (owner_user_id, recipe_id, data, content_type, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (owner_user_id, recipe_id)
		DO UPDATE SET data = EXCLUDED.data, content_type = EXCLUDED.content_type, updated_at = NOW()
	`

	_, err := s.pool.Exec(ctx, query, ownerUserID, recipeID, data, contentType)
	return err
}

func (s *PostgresRecipeImagesStorage) GetRecipeImage(ctx context.Context, ownerUserID, recipeID string) ([]byte, string, error) {
	query := `
		SELECT data, content_type
		FROM recipe_images
		WHERE owner_user_id = $1 AND recipe_id = $2
	`

	var (
		data        []byte
		contentType string
	)
	err := s.pool.QueryRow(ctx, query, ownerUserID, recipeID).Scan(&data, &contentType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return data, contentType, nil
}

func (s *PostgresRecipeImagesStorage) DeleteRecipeImage(ctx context.Context, ownerUserID, recipeID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM recipe_images WHERE owner_user_id = $1 AND recipe_id = $2`, ownerUserID, recipeID)
	return err
}
