package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyPrefix = "gobooks:idempotency:"
	// pendingValue holds a claimed key until its response is saved.
	pendingValue = "\x00pending"
)

// IdempotencyStore implements usecase.IdempotencyStore on Redis strings.
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates a new IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Claim reserves key with SET NX. A losing caller reads back whatever the
// winner stored.
func (s *IdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	redisKey := idempotencyPrefix + key

	claimed, err := s.client.SetNX(ctx, redisKey, pendingValue, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if claimed {
		return true, nil, nil
	}

	stored, err := s.client.Get(ctx, redisKey).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// Released between SETNX and GET; the holder failed, so try again.
		return s.Claim(ctx, key, ttl)
	case err != nil:
		return false, nil, err
	case string(stored) == pendingValue:
		return false, nil, nil
	}

	return false, stored, nil
}

// Complete replaces the pending value with response and restarts the TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, idempotencyPrefix+key, response, ttl).Err()
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, idempotencyPrefix+key).Err()
}
