package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mealbuddy/server/internal/storage"
)

type PostgresUsersStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresUsersStorage(pool *pgxpool.Pool) *PostgresUsersStorage {
	return &PostgresUsersStorage{pool: pool}
}

func (s *PostgresUsersStorage) CreateUser(ctx context.Context, user *storage.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, email_verified, two_factor_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		user.ID,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Username,
		user.PasswordHash,
		user.EmailVerified,
		user.TwoFactorEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (s *PostgresUsersStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	query := `
		SELECT id, email, username, password_hash, email_verified, two_factor_enabled, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanOne(ctx, query, strings.ToLower(strings.TrimSpace(email)))
}

func (s *PostgresUsersStorage) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	query := `
		SELECT id, email, username, password_hash, email_verified, two_factor_enabled, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanOne(ctx, query, id)
}

func (s *PostgresUsersStorage) scanOne(ctx context.Context, query string, arg any) (*storage.User, error) {
	var user storage.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.EmailVerified,
		&user.TwoFactorEnabled,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *PostgresUsersStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	query := `
		UPDATE users
		SET email = $2, username = $3, password_hash = $4, email_verified = $5, two_factor_enabled = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		user.ID,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Username,
		user.PasswordHash,
		user.EmailVerified,
		user.TwoFactorEnabled,
		user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
