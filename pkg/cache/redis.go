package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/sandrolain/goel/pkg/types"
)

// RedisClient is the subset of the go-redis client used by RedisCache.
// *redis.Client, *redis.ClusterClient and redis.UniversalClient satisfy it.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache is a ParserCache persisted in Redis.
//
// Expressions are stored in their versioned binary form under
// prefix + key. Backend failures never reach the caller: they are logged
// and reported as a miss, and a circuit breaker stops calling Redis while
// it keeps failing.
type RedisCache struct {
	client  RedisClient
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

var _ ParserCache = (*RedisCache)(nil)

// RedisOption configures a RedisCache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	prefix   string
	ttl      time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	settings gobreaker.Settings
}

// WithPrefix sets the key prefix. Default "goel:expr:".
func WithPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.prefix = prefix
	}
}

// WithTTL sets the expiration of saved entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.ttl = ttl
	}
}

// WithTimeout bounds every Redis command. Default 500ms.
func WithTimeout(timeout time.Duration) RedisOption {
	return func(o *redisOptions) {
		o.timeout = timeout
	}
}

// WithLogger sets the logger used to report backend failures.
func WithLogger(logger *slog.Logger) RedisOption {
	return func(o *redisOptions) {
		o.logger = logger
	}
}

// WithBreakerSettings replaces the circuit breaker configuration.
func WithBreakerSettings(settings gobreaker.Settings) RedisOption {
	return func(o *redisOptions) {
		o.settings = settings
	}
}

// NewRedisCache creates a RedisCache on top of client.
func NewRedisCache(client RedisClient, opts ...RedisOption) *RedisCache {
	o := redisOptions{
		prefix:  "goel:expr:",
		timeout: 500 * time.Millisecond,
		settings: gobreaker.Settings{
			Name:        "goel-redis-cache",
			MaxRequests: 1,
			Interval:    10 * time.Second,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &RedisCache{
		client:  client,
		prefix:  o.prefix,
		ttl:     o.ttl,
		timeout: o.timeout,
		breaker: gobreaker.NewCircuitBreaker(o.settings),
		logger:  o.logger,
	}
}

// Key returns the Redis key used for a cache key.
func (c *RedisCache) Key(key string) string {
	return c.prefix + key
}

// Fetch loads and decodes the expression saved under key.
func (c *RedisCache) Fetch(key string) (*types.ParsedExpression, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, c.Key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get cache: %w", err)
		}
		return data, nil
	})
	if err != nil {
		c.logger.Warn("expression cache fetch failed", "key", key, "error", err)
		return nil, false
	}
	data, ok := result.([]byte)
	if !ok {
		return nil, false
	}

	var expr types.ParsedExpression
	if err := expr.UnmarshalBinary(data); err != nil {
		c.logger.Warn("expression cache entry is not decodable", "key", key, "error", err)
		return nil, false
	}
	return &expr, true
}

// Save encodes expr and stores it under key.
func (c *RedisCache) Save(key string, expr *types.ParsedExpression) {
	data, err := expr.MarshalBinary()
	if err != nil {
		c.logger.Warn("expression cache entry is not encodable", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	_, err = c.breaker.Execute(func() (interface{}, error) {
		if err := c.client.Set(ctx, c.Key(key), data, c.ttl).Err(); err != nil {
			return nil, fmt.Errorf("failed to set cache: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		c.logger.Warn("expression cache save failed", "key", key, "error", err)
	}
}

// State returns the state of the circuit breaker.
func (c *RedisCache) State() gobreaker.State {
	return c.breaker.State()
}
