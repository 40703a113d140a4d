// Package runlock serializes generation runs, in process or across replicas.
package runlock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker grants at most one holder at a time. TryLock never blocks: ok is
// false when another run holds the lock. release must be called exactly once
// after a successful TryLock.
type Locker interface {
	TryLock(ctx context.Context) (release func(), ok bool, err error)
}

// Local is an in-process lock.
type Local struct {
	mu sync.Mutex
}

func NewLocal() *Local { return &Local{} }

func (l *Local) TryLock(context.Context) (func(), bool, error) {
	if !l.mu.TryLock() {
		return nil, false, nil
	}
	return l.mu.Unlock, true, nil
}

// DefaultKey is the Redis key guarding generation runs.
const DefaultKey = "elyx:generation:lock"

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease-based lock shared by every process using the same key.
// The lease expires after ttl so a crashed holder cannot wedge the lock.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedis(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key, ttl: ttl, logger: logger}
}

// Connect parses redisURL and verifies the server is reachable.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (r *Redis) TryLock(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Release must succeed even when the run's context is gone.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil {
			r.logger.Warn("failed to release run lock", "key", r.key, "error", err)
		}
	}
	return release, true, nil
}
