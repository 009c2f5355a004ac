package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL       = 10 * time.Second
	defaultRetry     = 25 * time.Millisecond
	defaultKeyPrefix = "compliance:lock:"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a lease-based lock shared by every API and worker replica. Each key
// is a SET NX PX lease owned by a random token; release only deletes a lease the
// caller still owns.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
	prefix string
	logger *slog.Logger
}

type Option func(*Locker)

func WithTTL(ttl time.Duration) Option {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithRetryInterval(interval time.Duration) Option {
	return func(l *Locker) {
		if interval > 0 {
			l.retry = interval
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(l *Locker) { l.prefix = prefix }
}

func New(client redis.UniversalClient, logger *slog.Logger, opts ...Option) *Locker {
	if logger == nil {
		logger = slog.Default()
	}
	locker := &Locker{
		client: client,
		ttl:    defaultTTL,
		retry:  defaultRetry,
		prefix: defaultKeyPrefix,
		logger: logger,
	}
	for _, opt := range opts {
		opt(locker)
	}
	return locker
}

// Lock blocks until every key is held or ctx ends. Keys are taken in sorted
// order; on failure the ones already taken are released.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	token := uuid.NewString()
	ordered := sortedUnique(keys)
	held := make([]string, 0, len(ordered))
	for _, key := range ordered {
		if err := l.acquire(ctx, l.prefix+key, token); err != nil {
			l.release(held, token)
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		held = append(held, l.prefix+key)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		l.release(held, token)
	}, nil
}

func (l *Locker) acquire(ctx context.Context, key string, token string) error {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) release(keys []string, token string) {
	// Release must still run after the request context is cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, l.client, []string{keys[i]}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("lock release failed",
				"event", "compliance_lock_release_failed",
				"module", "site-compliance/compliance-engine",
				"layer", "adapter",
				"key", keys[i],
				"error", err.Error(),
			)
		}
	}
}

func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
