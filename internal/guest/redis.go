package guest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "acompana:guest:"

// RedisStore keeps guest progress in Redis under a per-guest key that
// expires after ttl of inactivity.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore for guestID. A zero ttl never expires.
func NewRedisStore(client *redis.Client, guestID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    keyPrefix + guestID,
		ttl:    ttl,
	}
}

func (s *RedisStore) Load(ctx context.Context) (Progress, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Progress{}, nil
	}
	if err != nil {
		return Progress{}, fmt.Errorf("get guest progress: %w", err)
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return Progress{}, fmt.Errorf("decode guest progress: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Save(ctx context.Context, p Progress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode guest progress: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("set guest progress: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("delete guest progress: %w", err)
	}
	return nil
}
