package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore persists wizard state between requests. Writes follow a simple
// last-writer-wins discipline; there is no cross-key transaction.
type StateStore interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, key string) (*State, error)
	Delete(ctx context.Context, key string) error
}

const stateKeyPrefix = "booking:wizard:"

// RedisStore is the redis-backed StateStore. Entries carry a TTL so abandoned
// wizards age out without a sweep job on this side.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore constructs a wizard state store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 45 * time.Minute
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("booking: marshal state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKeyPrefix+state.Key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("booking: save state: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*State, error) {
	payload, err := s.rdb.Get(ctx, stateKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load state: %w", err)
	}
	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("booking: decode state: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, stateKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("booking: delete state: %w", err)
	}
	return nil
}
