package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another replica is left alone.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

const releaseTimeout = 2 * time.Second

var (
	// ErrLockHeld means another holder owns the lock.
	ErrLockHeld    = errors.New("lock_held")
	ErrInvalidLock = errors.New("invalid_lock")
)

// Locker hands out redis locks. A nil Locker is valid and means single
// replica mode: WithLock runs its function directly.
type Locker struct {
	client  *redis.Client
	release *redis.Script
}

// Lock is a held key. Release is safe to call more than once.
type Lock struct {
	locker *Locker
	key    string
	token  string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client, release: redis.NewScript(releaseScript)}
}

// Acquire takes key for ttl or returns ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	if l == nil || key == "" || ttl <= 0 {
		return nil, ErrInvalidLock
	}
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{locker: l, key: key, token: token}, nil
}

func (k *Lock) Release(ctx context.Context) error {
	if k == nil || k.token == "" {
		return nil
	}
	err := k.locker.release.Run(ctx, k.locker.client, []string{k.key}, k.token).Err()
	k.token = ""
	return err
}

// WithLock runs fn while holding key. ErrLockHeld is returned without
// calling fn when the key is taken. The lock is released on a fresh context
// so a cancelled billing run still frees it.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l == nil {
		return fn(ctx)
	}
	lock, err := l.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}()
	return fn(ctx)
}
