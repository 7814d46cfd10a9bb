package countstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisCountPrefix    = "ocrmod/count/"
	redisDistinctPrefix = "ocrmod/distinct/"
)

// Every write touches all windows. Hour and day keys outlive their window by one more, so reads near a boundary still find them; zero means no expiry.
var redisWindows = []struct {
	period string
	ttl    time.Duration
}{
	{PeriodHour, 2 * time.Hour},
	{PeriodDay, 48 * time.Hour},
	{PeriodTotal, 0},
}

// Plain counters are INCR keys; distinct counters are HyperLogLogs, so distinct counts are approximate.
type RedisCountStore struct {
	Client *redis.Client
}

var _ CountStore = (*RedisCountStore)(nil)

func NewRedisCountStore(redisURL string) (*RedisCountStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.TODO()).Err(); err != nil {
		return nil, err
	}
	return NewRedisCountStoreFromClient(rdb), nil
}

// Wraps an existing (already checked) client; the daemon shares one client between stores.
func NewRedisCountStoreFromClient(rdb *redis.Client) *RedisCountStore {
	return &RedisCountStore{Client: rdb}
}

func (s *RedisCountStore) GetCount(ctx context.Context, name, val, period string) (int, error) {
	c, err := s.Client.Get(ctx, redisCountPrefix+periodBucket(name, val, period)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return c, err
}

// Bumps the counter in every window, in a single round-trip.
func (s *RedisCountStore) Increment(ctx context.Context, name, val string) error {
	_, err := s.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, w := range redisWindows {
			key := redisCountPrefix + periodBucket(name, val, w.period)
			p.Incr(ctx, key)
			if w.ttl > 0 {
				p.Expire(ctx, key, w.ttl)
			}
		}
		return nil
	})
	return err
}

func (s *RedisCountStore) GetCountDistinct(ctx context.Context, name, bucket, period string) (int, error) {
	c, err := s.Client.PFCount(ctx, redisDistinctPrefix+periodBucket(name, bucket, period)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return int(c), err
}

func (s *RedisCountStore) IncrementDistinct(ctx context.Context, name, bucket, val string) error {
	_, err := s.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, w := range redisWindows {
			key := redisDistinctPrefix + periodBucket(name, bucket, w.period)
			p.PFAdd(ctx, key, val)
			if w.ttl > 0 {
				p.Expire(ctx, key, w.ttl)
			}
		}
		return nil
	})
	return err
}
