package limits

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/thenoetrevino/tablero/internal/config"
)

// RateStore is the echo limiter store the API throttles principals with.
// RetryAfter tells a denied identifier how long to wait.
type RateStore interface {
	middleware.RateLimiterStore
	RetryAfter(identifier string) time.Duration
}

// MemoryStore is echo's in-process token bucket store. It suits a single
// API instance.
type MemoryStore struct {
	*middleware.RateLimiterMemoryStore
	interval time.Duration
}

// NewMemoryStore allows cfg.Requests per cfg.Window, refilled evenly
func NewMemoryStore(cfg config.RateLimitConfig) *MemoryStore {
	requests, window := bounds(cfg)
	return &MemoryStore{
		RateLimiterMemoryStore: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(requests) / window.Seconds()),
			Burst:     requests,
			ExpiresIn: window,
		}),
		interval: window / time.Duration(requests),
	}
}

// RetryAfter is the time until the bucket holds another token
func (s *MemoryStore) RetryAfter(string) time.Duration {
	return s.interval
}

// RedisRateStore counts fixed windows in Redis so API instances share them.
// A failing Redis lets requests through.
type RedisRateStore struct {
	client  redis.Cmdable
	prefix  string
	limit   int
	window  time.Duration
	timeout time.Duration
	logger  *zap.Logger
}

// NewRedisRateStore creates a store whose keys start with "ratelimit:"
func NewRedisRateStore(client redis.Cmdable, cfg config.RateLimitConfig, logger *zap.Logger) *RedisRateStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	requests, window := bounds(cfg)
	return &RedisRateStore{
		client:  client,
		prefix:  "ratelimit:",
		limit:   requests,
		window:  window,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func (s *RedisRateStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := s.incr(ctx, identifier)
	if err != nil {
		s.logger.Warn("rate limit store failed", zap.String("identifier", identifier), zap.Error(err))
		return true, nil
	}
	return count <= int64(s.limit), nil
}

func (s *RedisRateStore) incr(ctx context.Context, identifier string) (int64, error) {
	key := s.prefix + identifier
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, s.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("rate limit %s: %w", identifier, err)
	}
	return incr.Val(), nil
}

// RetryAfter is the time left in the identifier's window
func (s *RedisRateStore) RetryAfter(identifier string) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	ttl, err := s.client.PTTL(ctx, s.prefix+identifier).Result()
	if err != nil || ttl <= 0 {
		return s.window
	}
	return ttl
}

func bounds(cfg config.RateLimitConfig) (int, time.Duration) {
	requests, window := cfg.Requests, cfg.Window
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return requests, window
}

var (
	_ RateStore = (*MemoryStore)(nil)
	_ RateStore = (*RedisRateStore)(nil)
)
