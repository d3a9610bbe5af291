package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	goredis "github.com/redis/go-redis/v9"
)

// ClientProvider hands out the current Redis client. *redis.Client from
// pkg/redis satisfies it and may swap the client after a reconnect.
type ClientProvider interface {
	GetClient() *goredis.Client
}

type directClient struct {
	client *goredis.Client
}

func (d directClient) GetClient() *goredis.Client { return d.client }

// Direct wraps a plain go-redis client as a ClientProvider.
func Direct(client *goredis.Client) ClientProvider {
	return directClient{client: client}
}

// RedisStore implements Store on top of Redis string values.
type RedisStore struct {
	client ClientProvider
	prefix string
	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

func NewRedisStore(client ClientProvider, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.GetClient().Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			r.misses.Add(1)
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	r.hits.Add(1)
	return nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	// no TTL: the mirror lives until explicitly deleted
	if err := r.client.GetClient().Set(ctx, r.buildKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	r.writes.Add(1)
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.GetClient().Del(ctx, r.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	r.writes.Add(1)
	return nil
}

func (r *RedisStore) HealthCheck(ctx context.Context) error {
	return r.client.GetClient().Ping(ctx).Err()
}

func (r *RedisStore) Stats() Stats {
	return Stats{
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Writes: r.writes.Load(),
	}
}

func (r *RedisStore) buildKey(key string) string {
	return r.prefix + key
}
