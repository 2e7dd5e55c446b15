package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/paypoint/internal/shared/logger"
)

const (
	// orderLockKeyPrefix is the prefix for per-order confirmation locks
	orderLockKeyPrefix = "paypoint:order_lock:"
	lockRetryInterval  = 25 * time.Millisecond
	lockReleaseTimeout = 3 * time.Second
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOrderLocker serializes confirmation of one order across instances.
type RedisOrderLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	logger logger.Interface
}

func NewRedisOrderLocker(client *redis.Client, ttl, wait time.Duration, logger logger.Interface) *RedisOrderLocker {
	return &RedisOrderLocker{client: client, ttl: ttl, wait: wait, logger: logger}
}

// buildKey builds the Redis key for an order lock
// Format: paypoint:order_lock:{order_id}
func (l *RedisOrderLocker) buildKey(orderID uint) string {
	return fmt.Sprintf("%s%d", orderLockKeyPrefix, orderID)
}

// TryLock polls SET NX PX until it wins or the wait window closes.
func (l *RedisOrderLocker) TryLock(ctx context.Context, orderID uint) (func(), bool, error) {
	key := l.buildKey(orderID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to acquire order lock: %w", err)
		}
		if acquired {
			var once sync.Once
			return func() { once.Do(func() { l.release(key, token) }) }, true, nil
		}
		if !time.Now().Before(deadline) {
			return nil, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *RedisOrderLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warnw("failed to release order lock", "key", key, "error", err)
	}
}

// LocalOrderLocker is the single-instance fallback: one buffered channel
// per order, dropped when the last waiter leaves.
type LocalOrderLocker struct {
	mu    sync.Mutex
	locks map[uint]*localLock
	wait  time.Duration
}

type localLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalOrderLocker(wait time.Duration) *LocalOrderLocker {
	return &LocalOrderLocker{locks: make(map[uint]*localLock), wait: wait}
}

func (l *LocalOrderLocker) TryLock(ctx context.Context, orderID uint) (func(), bool, error) {
	lk := l.ref(orderID)

	acquired := func() (func(), bool, error) {
		var once sync.Once
		return func() {
			once.Do(func() {
				<-lk.sem
				l.unref(orderID)
			})
		}, true, nil
	}

	if l.wait <= 0 {
		select {
		case lk.sem <- struct{}{}:
			return acquired()
		default:
			l.unref(orderID)
			return nil, false, nil
		}
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case lk.sem <- struct{}{}:
		return acquired()
	case <-timer.C:
		l.unref(orderID)
		return nil, false, nil
	case <-ctx.Done():
		l.unref(orderID)
		return nil, false, ctx.Err()
	}
}

func (l *LocalOrderLocker) ref(orderID uint) *localLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[orderID]
	if !ok {
		lk = &localLock{sem: make(chan struct{}, 1)}
		l.locks[orderID] = lk
	}
	lk.refs++
	return lk
}

func (l *LocalOrderLocker) unref(orderID uint) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lk, ok := l.locks[orderID]
	if !ok {
		return
	}
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, orderID)
	}
}
