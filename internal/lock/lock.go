package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	ErrNotObtained = errors.New("lock_not_obtained")
	ErrLeaseLost   = errors.New("lock_lease_lost")
)

// Locker serializes writers that share a key. Obtain blocks until the lock
// is held, ctx is done or the backend gives up.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Refresh extends it by ttl and fails with
// ErrLeaseLost once another holder has taken the key.
type Lease interface {
	Refresh(ctx context.Context, ttl time.Duration) error
	Release(ctx context.Context) error
}

// New returns a Redis-backed locker when a client is configured and an
// in-process locker otherwise.
func New(client *redis.Client, log *zap.Logger) Locker {
	log = log.Named("lock")
	if client == nil {
		log.Info("redis not configured, using in-process batch lock")
		return NewLocal()
	}
	return NewRedis(client)
}

type RedisLocker struct {
	client  *redislock.Client
	backoff time.Duration
}

func NewRedis(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(client),
		backoff: 200 * time.Millisecond,
	}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lease, error) {
	if key == "" {
		return nil, errors.New("lock key is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}

	// Retries until ctx expires.
	lk, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Join(ErrNotObtained, ctxErr)
		}
		return nil, err
	}
	return &redisLease{lock: lk}, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (l *redisLease) Refresh(ctx context.Context, ttl time.Duration) error {
	err := l.lock.Refresh(ctx, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLeaseLost
	}
	return err
}

func (l *redisLease) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}

// LocalLocker is a per-key mutex for single-process deployments. ttl is
// ignored; the lease is held until released.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]chan struct{}
}

func NewLocal() *LocalLocker {
	return &LocalLocker{keys: make(map[string]chan struct{})}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Lease, error) {
	if key == "" {
		return nil, errors.New("lock key is empty")
	}
	sem := l.semaphore(key)
	select {
	case sem <- struct{}{}:
		return &localLease{sem: sem}, nil
	case <-ctx.Done():
		return nil, errors.Join(ErrNotObtained, ctx.Err())
	}
}

func (l *LocalLocker) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.keys[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.keys[key] = sem
	}
	return sem
}

type localLease struct {
	once sync.Once
	sem  chan struct{}
}

func (l *localLease) Refresh(context.Context, time.Duration) error {
	return nil
}

func (l *localLease) Release(context.Context) error {
	l.once.Do(func() { <-l.sem })
	return nil
}
