//go:build integration

package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis connection string: %v", err)
	}

	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	client := setupRedis(t)
	locker := NewRedisLockerWithClient(client, 200*time.Millisecond, 10*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "stripe-customer:1", 5*time.Second)
	if err != nil {
		t.Fatalf("expected lock, got %v", err)
	}

	_, err = locker.Lock(ctx, "stripe-customer:1", 5*time.Second)
	if !errors.Is(err, domain.ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired while held, got %v", err)
	}

	unlock()

	unlock2, err := locker.Lock(ctx, "stripe-customer:1", 5*time.Second)
	if err != nil {
		t.Fatalf("expected lock after release, got %v", err)
	}
	unlock2()
}

func TestRedisLocker_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	client := setupRedis(t)
	locker := NewRedisLockerWithClient(client, time.Second, 10*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	staleUnlock, err := locker.Lock(ctx, "k", 50*time.Millisecond)
	if err != nil {
		t.Fatalf("expected lock, got %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	if err != nil {
		t.Fatalf("expected lock after expiry, got %v", err)
	}
	defer unlock()

	staleUnlock()

	exists, err := client.Exists(ctx, "k").Result()
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if exists != 1 {
		t.Error("expected the current holder's key to survive a stale unlock")
	}
}
