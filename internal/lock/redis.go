package lock

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/cache"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const keyPrefix = "lock:inventory:"

// RedisLocker is a Locker shared by every replica of the service.
type RedisLocker struct {
	cache    *cache.RedisClient
	ttl      time.Duration
	retry    time.Duration
	attempts int
	logger   logger.ZapLogger
}

func NewRedisLocker(c *cache.RedisClient, ttl, retry time.Duration, log logger.ZapLogger) *RedisLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	attempts := int(ttl / retry)
	if attempts < 3 {
		attempts = 3
	}
	return &RedisLocker{cache: c, ttl: ttl, retry: retry, attempts: attempts, logger: log}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := keyPrefix + key
	token := uuid.New().String()

	for i := 0; i < r.attempts; i++ {
		ok, err := r.cache.AcquireLock(ctx, lockKey, token, r.ttl)
		if err != nil {
			r.logger.Error("failed to acquire lock redis error", zap.String("key", lockKey), zap.Error(err))
		}
		if ok {
			return func() {
				// release on a fresh context: the caller's may already be cancelled
				relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := r.cache.ReleaseLock(relCtx, lockKey, token); err != nil {
					r.logger.Warn("failed to release lock", zap.String("key", lockKey), zap.Error(err))
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, busy(key, ctx.Err())
		case <-time.After(r.retry):
		}
	}

	return nil, busy(key, nil)
}

func busy(key string, cause error) error {
	return apperror.New(apperror.KindConflict, "inventory item "+key+" is busy, please try again later", cause)
}
