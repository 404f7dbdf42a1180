package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/redis"
)

// Locker serializes operations on vehicles and drivers. Lock acquires every
// key or none; keys are taken in sorted order so overlapping sets cannot
// deadlock. The returned func releases all of them.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

func vehicleKey(id string) string { return "vehicle:" + id }
func driverKey(id string) string  { return "driver:" + id }

// normalizeKeys sorts keys and drops duplicates and empties.
func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	n := 0
	for i, k := range out {
		if i == 0 || k != out[n-1] {
			out[n] = k
			n++
		}
	}
	return out[:n]
}

// LocalLocker is an in-process keyed mutex for single-instance deployments
// and tests.
type LocalLocker struct {
	mu          sync.Mutex
	slots       map[string]chan struct{}
	waitTimeout time.Duration
}

// NewLocalLocker creates a new LocalLocker. A zero waitTimeout waits until
// the caller's context is done.
func NewLocalLocker(waitTimeout time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{}), waitTimeout: waitTimeout}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock blocks until every key is held or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	held := make([]chan struct{}, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}

	for _, key := range keys {
		ch := l.slot(key)
		select {
		case ch <- struct{}{}:
			held = append(held, ch)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

// RedisLocker takes per-resource locks in Redis so that several instances
// serialize on the same vehicles and drivers.
type RedisLocker struct {
	store        redis.LockStoreInterface
	ttl          time.Duration
	waitTimeout  time.Duration
	pollInterval time.Duration
	log          logrus.FieldLogger
}

// NewRedisLocker creates a new RedisLocker. ttl bounds how long a crashed
// holder can block others; waitTimeout bounds how long Lock waits.
func NewRedisLocker(store redis.LockStoreInterface, ttl, waitTimeout, pollInterval time.Duration, log logrus.FieldLogger) *RedisLocker {
	if pollInterval <= 0 {
		pollInterval = 25 * time.Millisecond
	}
	return &RedisLocker{
		store:        store,
		ttl:          ttl,
		waitTimeout:  waitTimeout,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Lock polls for every key until acquired, the wait timeout passes or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	token := uuid.New().String()

	waitCtx := ctx
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(waitCtx, key, token); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(held, token) }) }, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.store.AcquireLock(ctx, key, token, l.ttl)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// release runs on a fresh context so locks are freed even when the request
// context is already cancelled.
func (l *RedisLocker) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		released, err := l.store.ReleaseLock(ctx, keys[i], token)
		if err != nil {
			l.log.WithError(err).WithField("lock", keys[i]).Warn("failed to release lock")
			continue
		}
		if !released {
			l.log.WithField("lock", keys[i]).Warn("lock expired before release")
		}
	}
}

var (
	_ Locker = (*LocalLocker)(nil)
	_ Locker = (*RedisLocker)(nil)
)
