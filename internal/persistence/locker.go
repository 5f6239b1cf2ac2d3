package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrLockNotAcquired is returned when the lock is still held by someone else
// at the caller's deadline.
var ErrLockNotAcquired = errors.New("lock not acquired")

const lockPollInterval = 25 * time.Millisecond

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serializes work on a key across service instances.
type RedisLocker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLocker builds a locker. A nil Redis yields a locker that never blocks.
func NewRedisLocker(r *Redis, logger *zap.Logger) *RedisLocker {
	var client *redis.Client
	if r.Enabled() {
		client = r.Client
	}
	return &RedisLocker{client: client, logger: logger}
}

// Acquire blocks until key is held or ctx is done. The returned release func
// is always non-nil. If Redis itself fails the lock is skipped with a warning.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	noop := func() {}
	if l == nil || l.client == nil {
		return noop, nil
	}

	token := uuid.NewString()
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return noop, ErrLockNotAcquired
			}
			l.logger.Warn("redis lock unavailable; continuing without it", zap.String("key", key), zap.Error(err))
			return noop, nil
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return noop, ErrLockNotAcquired
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		l.logger.Warn("redis lock release failed", zap.String("key", key), zap.Error(err))
	}
}
