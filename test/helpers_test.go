package test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/docsforge/authcore"
)

type memoryStore struct {
	users      map[string]authcore.UserRecord
	byUsername map[string]string
	mu         sync.Mutex
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      map[string]authcore.UserRecord{},
		byUsername: map[string]string{},
	}
}

func (s *memoryStore) GetUserByUsername(ctx context.Context, username string) (authcore.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.byUsername[username]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return s.users[userID], nil
}

func (s *memoryStore) GetUserByID(ctx context.Context, userID string) (authcore.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return authcore.UserRecord{}, authcore.ErrUserNotFound
	}
	return user, nil
}

func (s *memoryStore) CreateUser(ctx context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[input.Username]; exists {
		return authcore.UserRecord{}, authcore.ErrDuplicateUser
	}

	user := authcore.UserRecord{
		ID:           fmt.Sprintf("u%d", len(s.users)+1),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	return user, nil
}

func (s *memoryStore) UpdatePasswordHash(ctx context.Context, userID string, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return authcore.ErrUserNotFound
	}
	user.PasswordHash = newHash
	s.users[userID] = user
	return nil
}

func testConfig() authcore.Config {
	cfg := authcore.DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	// Fast argon2 parameters keep the suite quick.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newGuard(t *testing.T, cfg authcore.Config) *authcore.Guard {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	guard, err := authcore.New().
		WithConfig(cfg).
		WithRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()})).
		WithUserStore(newMemoryStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(guard.Close)

	return guard
}
