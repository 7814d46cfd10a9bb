package cachestore

import (
	"context"
	"encoding/json"
)

type CacheStore interface {
	Get(ctx context.Context, name, key string) (string, error)
	Set(ctx context.Context, name, key string, val string) error
	Purge(ctx context.Context, name, key string) error
}

// Reads and decodes a JSON value. Returns nil (and no error) on a cache miss.
func GetJSON[T any](ctx context.Context, cs CacheStore, name, key string) (*T, error) {
	raw, err := cs.Get(ctx, name, key)
	if err != nil || raw == "" {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func SetJSON(ctx context.Context, cs CacheStore, name, key string, val any) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return cs.Set(ctx, name, key, string(raw))
}
