// Package redislock serialises lifecycle operations across AssetFlow
// processes with a Redis lease per key.
//
// A lock is a key set with NX and a TTL whose value is a random token.
// Release deletes the key only while it still holds that token, so a
// holder whose lease expired cannot free a lock someone else now owns.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nerrad567/assetflow-core/internal/apperr"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/config"
)

const (
	defaultTTL           = 30 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
	releaseTimeout       = 2 * time.Second
	pingTimeout          = 5 * time.Second
)

// ErrLockTimeout is returned when ctx ends before the lock is acquired.
var ErrLockTimeout = fmt.Errorf("redislock: timed out waiting for lock: %w", apperr.ErrConflict)

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Logger is the subset of logging.Logger used for release failures.
type Logger interface {
	Warn(msg string, args ...any)
}

// Locker implements lifecycle.Locker over Redis.
type Locker struct {
	client        redis.Cmdable
	prefix        string
	ttl           time.Duration
	retryInterval time.Duration
	logger        Logger
}

// Connect opens a Redis client from config and pings it.
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // error path
		return nil, fmt.Errorf("redislock: connecting to %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// New creates a Locker. Zero TTL and retry interval fall back to 30s and 50ms.
func New(client redis.Cmdable, cfg config.RedisConfig) *Locker {
	l := &Locker{
		client:        client,
		prefix:        cfg.KeyPrefix,
		ttl:           cfg.TTL,
		retryInterval: cfg.RetryInterval,
	}
	if l.ttl <= 0 {
		l.ttl = defaultTTL
	}
	if l.retryInterval <= 0 {
		l.retryInterval = defaultRetryInterval
	}
	return l
}

// SetLogger sets the logger used when a release fails.
func (l *Locker) SetLogger(logger Logger) {
	l.logger = logger
}

// Lock polls until key is acquired or ctx is done. The lease lasts the
// configured TTL; the returned unlock releases it early.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		switch {
		case ok:
			return l.unlocker(redisKey, token), nil
		case err != nil && ctx.Err() == nil:
			return nil, fmt.Errorf("redislock: acquiring %s: %w", key, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlocker(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
			if err != nil && !errors.Is(err, redis.Nil) && l.logger != nil {
				l.logger.Warn("redis lock release failed", "key", redisKey, "error", err)
			}
		})
	}
}
