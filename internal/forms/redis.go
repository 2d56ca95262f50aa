package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "leasing:form:"

// RedisStore keeps form state in redis as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisConfig configures the redis connection.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// NewRedisClient builds a client with the service's pool settings.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// NewRedisStore wraps client.
func NewRedisStore(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Get returns the state for id and pushes its expiry out by the TTL.
func (s *RedisStore) Get(ctx context.Context, id string) (State, error) {
	raw, err := s.client.GetEx(ctx, s.prefix+id, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, fmt.Errorf("form %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return State{}, fmt.Errorf("get form %s: %w", id, err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode form %s: %w", id, err)
	}
	return state, nil
}

// Put stores state and refreshes its TTL.
func (s *RedisStore) Put(ctx context.Context, state State) error {
	if state.ID == "" {
		return fmt.Errorf("put form: empty id")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode form %s: %w", state.ID, err)
	}
	if err := s.client.Set(ctx, s.prefix+state.ID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put form %s: %w", state.ID, err)
	}
	return nil
}

// Delete removes the state for id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("delete form %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
