package payment

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is what a retried request with the same key gets back.
type Record struct {
	Fingerprint string `json:"fingerprint"`
	Intent      Intent `json:"intent"`
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*Record, error) // nil, nil when absent
	// Put keeps the first record stored under key.
	Put(ctx context.Context, key string, rec Record) error
}

type RedisIdempotency struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisIdempotency(rdb redis.Cmdable, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, ttl: ttl, prefix: "plantnet:intent:"}
}

func (r *RedisIdempotency) Get(ctx context.Context, key string) (*Record, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisIdempotency) Put(ctx context.Context, key string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.rdb.SetNX(ctx, r.prefix+key, b, r.ttl).Err()
}
