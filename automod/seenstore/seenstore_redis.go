package seenstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisSeenPrefix string = "ocrmod/seen/"

// Stores one key per submission, expiring after TTL. Submissions older than the TTL are assumed to no longer appear in listings.
type RedisSeenStore struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ SeenStore = (*RedisSeenStore)(nil)

func NewRedisSeenStore(rdb *redis.Client, ttl time.Duration) *RedisSeenStore {
	return &RedisSeenStore{
		Client: rdb,
		TTL:    ttl,
	}
}

func (s *RedisSeenStore) Seen(ctx context.Context, id string) (bool, error) {
	n, err := s.Client.Exists(ctx, redisSeenPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSeenStore) MarkSeen(ctx context.Context, id string) error {
	return s.Client.Set(ctx, redisSeenPrefix+id, 1, s.TTL).Err()
}
