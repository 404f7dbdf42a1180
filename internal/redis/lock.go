package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lockPrefix = "lock:"

// releaseScript deletes the lock only while it still holds the caller's token,
// so an expired lock re-acquired by another holder is never released.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquireLock attempts to take the lock on key (e.g. "vehicle:<id>") for
// token. Returns true if the lock was acquired, false if already held.
func (s *LockStore) AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleaseLock releases the lock on key if it is still held by token.
// Returns false if the lock had expired or belongs to someone else.
func (s *LockStore) ReleaseLock(ctx context.Context, key, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, s.client, []string{lockPrefix + key}, token).Int()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
