package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps each client's keys in one Redis hash,
// "<prefix>:<clientID>", refreshed to ttl on every write.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStorage returns a Redis backed Storage. A zero ttl keeps hashes
// forever.
func NewRedisStorage(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStorage {
	if prefix == "" {
		prefix = "client"
	}
	return &RedisStorage{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisStorage) key(clientID string) string { return r.prefix + ":" + clientID }

func (r *RedisStorage) Get(ctx context.Context, clientID, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, r.key(clientID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, clientID, key, value string) error {
	k := r.key(clientID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, k, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisStorage) Delete(ctx context.Context, clientID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.HDel(ctx, r.key(clientID), keys...).Err()
}
