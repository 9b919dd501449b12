package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when the ledger write lock stays held by
// another process for longer than the retry budget.
var ErrLockNotObtained = errors.New("could not obtain ledger write lock")

// Redis is a substrate backed by plain Redis strings.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedis connects to addr and pings it once.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", addr, err)
	}
	return &Redis{client: client, timeout: 5 * time.Second}, nil
}

func (r *Redis) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns the string stored under key.
func (r *Redis) Get(key string) (string, bool, error) {
	ctx, cancel := r.context()
	defer cancel()

	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key without expiry.
func (r *Redis) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	ctx, cancel := r.context()
	defer cancel()

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetMany writes all entries inside one MULTI/EXEC transaction.
func (r *Redis) SetMany(entries []Entry) error {
	ctx, cancel := r.context()
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.Set(ctx, e.Key, e.Value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi set: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Locker returns a cross-process lock on key, held for at most ttl.
func (r *Redis) Locker(key string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(r.client),
		key:    key,
		ttl:    ttl,
	}
}

// RedisLocker serializes ledger writers sharing one Redis instance.
type RedisLocker struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
}

// Obtain blocks until the lock is held, retrying for roughly the lock ttl.
// The returned release func must be called once the write is done.
func (l *RedisLocker) Obtain(ctx context.Context) (func(), error) {
	retries := int(l.ttl / (100 * time.Millisecond))
	lock, err := l.client.Obtain(ctx, l.key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), retries),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", l.key, err)
	}
	return func() {
		_ = lock.Release(context.Background())
	}, nil
}
