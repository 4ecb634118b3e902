package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

const (
	lockKeyPattern = "lanxat:profile:lock:%d"
	lockTTL        = 5 * time.Second
	lockAttempts   = 3
	lockRetryDelay = 50 * time.Millisecond
)

// Locker serializes read-mutate-save sequences per user.
type Locker interface {
	Lock(ctx context.Context, userID int64) (unlock func(), err error)
}

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SETNX lock shared by every bot instance.
type RedisLocker struct {
	client redisLockClient
	log    *slog.Logger
}

type redisLockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

func NewRedisLocker(client redisLockClient, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}
	return &RedisLocker{client: client, log: log}
}

func (l *RedisLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	key := fmt.Sprintf(lockKeyPattern, userID)
	token := uuid.NewString()
	for attempt := 1; ; attempt++ {
		acquired, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			l.log.Error("failed to acquire profile lock", slog.Int64("user_id", userID), slog.Any("error", err))
			return nil, errors.NewDatabaseError(fmt.Errorf("acquire profile lock: %w", err))
		}

		if acquired {
			break
		}

		if attempt == lockAttempts {
			l.log.Warn("profile lock already held", slog.Int64("user_id", userID))
			return nil, errors.NewLockedError(userID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	unlock := func() {
		// the caller's context may already be done
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.log.Error("failed to release profile lock", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}

	return unlock, nil
}

// LocalLocker serializes updates inside one process. Used when Redis is not configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[int64]*localLock
}

// localLock is a one-slot semaphore, so waiters can give up on ctx.
type localLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[int64]*localLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, userID int64) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	lock := l.locks[userID]
	if lock == nil {
		lock = &localLock{sem: make(chan struct{}, 1)}
		l.locks[userID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(userID, lock)
		return nil, ctx.Err()
	}

	return func() {
		<-lock.sem
		l.release(userID, lock)
	}, nil
}

func (l *LocalLocker) release(userID int64, lock *localLock) {
	l.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, userID)
	}
	l.mu.Unlock()
}
