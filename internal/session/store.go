package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/careport/booking-gateway/pkg/logging"
)

const (
	userKey  = "session:user"
	tokenKey = "session:token"
)

// User is the signed-in identity persisted alongside the upstream token.
type User struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
}

// Store keeps auth session state in redis: the user record and the HMS bearer
// token. Keys follow a last-writer-wins discipline; there is no transaction
// across them.
type Store struct {
	rdb    *redis.Client
	logger *logging.Logger
}

// NewStore constructs a session store.
func NewStore(rdb *redis.Client, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{rdb: rdb, logger: logger}
}

// SetToken stores the HMS bearer token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.rdb.Set(ctx, tokenKey, token, 0).Err(); err != nil {
		return fmt.Errorf("session: set token: %w", err)
	}
	return nil
}

// Token returns the stored HMS bearer token, or empty when none is set. It
// satisfies the HMS client's TokenSource interface.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: get token: %w", err)
	}
	return token, nil
}

// SetUser stores the signed-in user.
func (s *Store) SetUser(ctx context.Context, user User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: marshal user: %w", err)
	}
	if err := s.rdb.Set(ctx, userKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("session: set user: %w", err)
	}
	return nil
}

// User returns the signed-in user, or nil when no session exists.
func (s *Store) User(ctx context.Context) (*User, error) {
	payload, err := s.rdb.Get(ctx, userKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: get user: %w", err)
	}
	var user User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, fmt.Errorf("session: decode user: %w", err)
	}
	return &user, nil
}

// Clear removes the user and token entries. The HMS client invokes this via
// its unauthorized hook when the upstream answers 401.
func (s *Store) Clear(ctx context.Context) {
	if err := s.rdb.Del(ctx, userKey, tokenKey).Err(); err != nil {
		s.logger.Warn("failed to clear session", "error", err)
	}
}
