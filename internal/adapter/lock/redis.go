package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lock that was taken over by another holder is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client       *redis.Client
	waitTimeout  time.Duration
	pollInterval time.Duration
	log          *zap.Logger
}

func NewRedisLocker(url string, waitTimeout, pollInterval time.Duration, log *zap.Logger) (ports.Locker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Ping to verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Successfully connected to Redis")
	return NewRedisLockerWithClient(client, waitTimeout, pollInterval, log), nil
}

func NewRedisLockerWithClient(client *redis.Client, waitTimeout, pollInterval time.Duration, log *zap.Logger) *RedisLocker {
	if pollInterval <= 0 {
		pollInterval = 50 * time.Millisecond
	}
	return &RedisLocker{
		client:       client,
		waitTimeout:  waitTimeout,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Lock blocks until key is acquired, ctx is done, or the wait timeout passes.
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()

	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis: acquire lock %s: %w", key, err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLockNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
	}
}

func (l *RedisLocker) Ping() error {
	return l.client.Ping(context.Background()).Err()
}

func (l *RedisLocker) Close() error {
	return l.client.Close()
}
