package limits

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("connected to redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// NewRateStore builds the store selected by cfg.Backend. client may be nil
// for the memory backend.
func NewRateStore(cfg config.RateLimitConfig, client redis.Cmdable, logger *zap.Logger) (RateStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(cfg), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("redis rate limit backend requires a redis client")
		}
		return NewRedisRateStore(client, cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.Backend)
	}
}
