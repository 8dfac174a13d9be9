package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionBusy = errors.New("another request is already running for this session")

// SessionLocker guarantees at most one outstanding operation per session.
// TryLock never waits: a held session yields ErrSessionBusy.
type SessionLocker interface {
	TryLock(ctx context.Context, sessionID string) (unlock func(), err error)
}

type localSessionLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalSessionLocker guards sessions within this process only.
func NewLocalSessionLocker() SessionLocker {
	return &localSessionLocker{held: make(map[string]struct{})}
}

func (l *localSessionLocker) TryLock(ctx context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[sessionID]; busy {
		return nil, ErrSessionBusy
	}
	l.held[sessionID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, sessionID)
			l.mu.Unlock()
		})
	}, nil
}

const sessionLockPrefix = "interview:lock:"

// releaseScript deletes the lock only while it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisSessionLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionLocker guards sessions across every instance sharing rdb.
// ttl bounds how long a crashed holder can block a session.
func NewRedisSessionLocker(rdb *redis.Client, ttl time.Duration) SessionLocker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisSessionLocker{rdb: rdb, ttl: ttl}
}

func (l *redisSessionLocker) TryLock(ctx context.Context, sessionID string) (func(), error) {
	key := sessionLockPrefix + sessionID
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionBusy
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseScript.Run(context.Background(), l.rdb, []string{key}, token)
		})
	}, nil
}
