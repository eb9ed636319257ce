package character

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/spell-planner/internal/errors"
	"github.com/KirkDiggler/spell-planner/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/spell-planner/internal/redis"
)

// DefaultMaxTxRetries bounds optimistic transaction retries on contention
const DefaultMaxTxRetries = 10

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client     redisclient.Client
	Key        string
	Clock      clock.Clock
	MaxRetries int
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	if cfg.MaxRetries < 0 {
		return errors.InvalidArgument("max retries cannot be negative")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = DefaultMaxTxRetries
	}

	return New(&Config{
		Backend: &redisBackend{client: cfg.Client, key: key, maxRetries: retries},
		Clock:   cfg.Clock,
	})
}

type redisBackend struct {
	client     redisclient.Client
	key        string
	maxRetries int
}

func (b *redisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get %s", b.key)
	}
	return data, nil
}

// Transact uses WATCH/MULTI so a concurrent writer forces a retry
func (b *redisBackend) Transact(ctx context.Context, _ time.Time, fn func(current []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, b.key).Bytes()
		if err != nil && err != redis.Nil {
			return errors.Wrapf(err, "failed to get %s", b.key)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, b.key)
				return nil
			}
			pipe.Set(ctx, b.key, next, 0) // No TTL for character data
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= b.maxRetries; attempt++ {
		err := b.client.Watch(ctx, txf, b.key)
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, redis.TxFailedErr) {
			return err
		}
		slog.DebugContext(ctx, "character transaction conflicted, retrying",
			"key", b.key,
			"attempt", attempt)
	}

	return errors.Abortedf("character update conflicted %d times", b.maxRetries).
		WithMeta("key", b.key)
}
