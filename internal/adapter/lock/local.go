package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/domain"
	"github.com/seu-repo/payment-bridge/internal/ports"
)

type lockEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker implements ports.Locker with in-process keyed mutexes.
// Used when Redis is not configured; it only serializes callers inside
// one process.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	log     *zap.Logger
}

func NewLocalLocker(log *zap.Logger) ports.Locker {
	log.Info("Local in-process locker initialized")
	return &LocalLocker{
		entries: make(map[string]*lockEntry),
		log:     log,
	}
}

// Lock ignores ttl: a local holder cannot vanish without releasing.
func (l *LocalLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.drop(key, e)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLockNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.drop(key, e)
		})
	}, nil
}

func (l *LocalLocker) drop(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *LocalLocker) Ping() error {
	return nil
}

func (l *LocalLocker) Close() error {
	return nil
}
