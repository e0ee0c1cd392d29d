package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mealbuddy/server/internal/storage"
)

// UsersMemoryStorage keeps accounts in memory for local/dev usage.
type UsersMemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]storage.User
	byEmail map[string]string // email -> user id
}

func NewUsersMemoryStorage() *UsersMemoryStorage {
	return &UsersMemoryStorage{
		byID:    make(map[string]storage.User),
		byEmail: make(map[string]string),
	}
}

func (s *UsersMemoryStorage) CreateUser(ctx context.Context, user *storage.User) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	email := normalizeEmail(user.Email)
	s.byID[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

func (s *UsersMemoryStorage) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	user := s.byID[id]
	return &user, nil
}

func (s *UsersMemoryStorage) GetUserByID(ctx context.Context, id string) (*storage.User, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *UsersMemoryStorage) UpdateUser(ctx context.Context, user *storage.User) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[user.ID]; !ok {
		return ErrNotFound
	}
	s.byID[user.ID] = *user
	s.byEmail[normalizeEmail(user.Email)] = user.ID
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
