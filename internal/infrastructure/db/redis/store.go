package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/defm/console/internal/core/ports"
)

// Store keeps the session entries in Redis so several console hosts can share
// one login. Key format: defm:<profile>:<key>
type Store struct {
	client  *redis.Client
	profile string
	// ttl bounds how long a persisted entry survives; zero keeps it forever.
	ttl time.Duration
}

var _ ports.KeyValueStore = (*Store)(nil)

// NewStore wraps an already connected client.
func NewStore(client *redis.Client, profile string, ttl time.Duration) *Store {
	if profile == "" {
		profile = "default"
	}
	return &Store{client: client, profile: profile, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ports.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(k string) string {
	return fmt.Sprintf("defm:%s:%s", s.profile, k)
}
