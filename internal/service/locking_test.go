package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKeys(t *testing.T) {
	got := normalizeKeys([]string{"vehicle:2", "", "driver:1", "vehicle:2", "driver:1"})
	assert.Equal(t, []string{"driver:1", "vehicle:2"}, got)
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker(0)
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "vehicle:1", "driver:1")
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside)
}

func TestLocalLocker_TimeoutReleasesPartialSet(t *testing.T) {
	l := NewLocalLocker(30 * time.Millisecond)
	ctx := context.Background()

	held, err := l.Lock(ctx, "vehicle:1")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "driver:1", "vehicle:1")
	assert.ErrorIs(t, err, ErrLockTimeout)

	// driver:1 was taken first and must have been released.
	unlock, err := l.Lock(ctx, "driver:1")
	require.NoError(t, err)
	unlock()

	held()
	held() // releasing twice is harmless
	unlock, err = l.Lock(ctx, "vehicle:1")
	require.NoError(t, err)
	unlock()
}

type mockLockStore struct {
	mock.Mock
}

func (m *mockLockStore) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, token, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLockStore) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	args := m.Called(ctx, key, token)
	return args.Bool(0), args.Error(1)
}

func TestRedisLocker_AcquiresInOrderAndReleases(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := &mockLockStore{}
	var order []string
	store.On("AcquireLock", mock.Anything, mock.Anything, mock.Anything, 10*time.Second).
		Run(func(args mock.Arguments) { order = append(order, args.String(1)) }).
		Return(true, nil)
	store.On("ReleaseLock", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	l := NewRedisLocker(store, 10*time.Second, time.Second, time.Millisecond, log)
	unlock, err := l.Lock(context.Background(), "vehicle:9", "driver:3")
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Equal(t, []string{"driver:3", "vehicle:9"}, order)
	store.AssertNumberOfCalls(t, "ReleaseLock", 2)
}

func TestRedisLocker_PollsUntilFree(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := &mockLockStore{}
	store.On("AcquireLock", mock.Anything, "vehicle:1", mock.Anything, mock.Anything).Return(false, nil).Twice()
	store.On("AcquireLock", mock.Anything, "vehicle:1", mock.Anything, mock.Anything).Return(true, nil).Once()
	store.On("ReleaseLock", mock.Anything, "vehicle:1", mock.Anything).Return(true, nil)

	l := NewRedisLocker(store, time.Second, time.Second, time.Millisecond, log)
	unlock, err := l.Lock(context.Background(), "vehicle:1")
	require.NoError(t, err)
	unlock()

	store.AssertNumberOfCalls(t, "AcquireLock", 3)
}

func TestRedisLocker_TimeoutReleasesHeldKeys(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := &mockLockStore{}
	store.On("AcquireLock", mock.Anything, "driver:1", mock.Anything, mock.Anything).Return(true, nil)
	store.On("AcquireLock", mock.Anything, "vehicle:1", mock.Anything, mock.Anything).Return(false, nil)
	store.On("ReleaseLock", mock.Anything, "driver:1", mock.Anything).Return(true, nil).Once()

	l := NewRedisLocker(store, time.Second, 20*time.Millisecond, time.Millisecond, log)
	_, err := l.Lock(context.Background(), "vehicle:1", "driver:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
	store.AssertExpectations(t)
}

func TestRedisLocker_StoreError(t *testing.T) {
	log, _ := test.NewNullLogger()
	store := &mockLockStore{}
	store.On("AcquireLock", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("connection refused"))

	l := NewRedisLocker(store, time.Second, time.Second, time.Millisecond, log)
	_, err := l.Lock(context.Background(), "vehicle:1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestActorFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, SystemActor, ActorFromContext(ctx))
	assert.Equal(t, SystemActor, ActorFromContext(WithActor(ctx, "")))
	assert.Equal(t, "meera", ActorFromContext(WithActor(ctx, "meera")))
}
