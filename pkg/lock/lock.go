package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when someone else owns the key.
var ErrHeld = errors.New("lock is held")

// Release gives the lock back. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}

// MemoryLocker is a process local Locker.
type MemoryLocker struct {
	cache *cache.Cache
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{cache: cache.New(5*time.Minute, time.Minute)}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	token := uuid.NewString()
	if err := m.cache.Add(key, token, ttl); err != nil {
		return nil, ErrHeld
	}
	return func() {
		if v, ok := m.cache.Get(key); ok && v.(string) == token {
			m.cache.Delete(key)
		}
	}, nil
}

// releaseScript deletes the key only when it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker takes locks with SETNX so that every replica agrees. When
// Redis cannot be reached it falls back to the in-process locker.
type RedisLocker struct {
	rdb      *redis.Client
	fallback *MemoryLocker
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, fallback: NewMemoryLocker()}
}

func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	if r.rdb == nil {
		return r.fallback.Acquire(ctx, key, ttl)
	}

	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, ctx.Err())
		}
		return r.fallback.Acquire(ctx, key, ttl)
	}
	if !ok {
		return nil, ErrHeld
	}

	return func() {
		// The caller's context may already be done when it releases.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, r.rdb, []string{key}, token).Err()
	}, nil
}
