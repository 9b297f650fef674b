package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// GateStore keeps the per-user "prerequisite confirmed" flag in Redis so the
// flag survives process restarts even though quiz progress does not. The TTL
// bounds how long a confirmation stays usable without a completed test.
type GateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGateStore(client *redis.Client, ttl time.Duration) *GateStore {
	return &GateStore{client: client, ttl: ttl}
}

func (s *GateStore) Satisfy(ctx context.Context, userID int64) error {
	return s.client.Set(ctx, s.key(userID), "1", s.ttl).Err()
}

func (s *GateStore) IsSatisfied(ctx context.Context, userID int64) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GateStore) Clear(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *GateStore) key(userID int64) string {
	return "gate:satisfied:" + strconv.FormatInt(userID, 10)
}
