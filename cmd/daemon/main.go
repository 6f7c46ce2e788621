package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/logging"
)

func main() {
	// Set up signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("daemon error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("tablero daemon shut down gracefully")
}

// run serves socket clients and, in redis mode, rebroadcasts what API
// instances publish
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	server, err := daemon.NewServer(cfg.Events.SocketPath, daemon.Options{
		BroadcastBuffer: cfg.Events.QueueSize,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("tablero daemon starting",
		zap.String("socket_path", cfg.Events.SocketPath),
		zap.Int("pid", os.Getpid()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })

	if cfg.Events.Mode == config.EventsRedis {
		rdb, err := limits.NewRedisClient(gctx, cfg.Redis, logger)
		if err != nil {
			_ = server.Shutdown()
			_ = g.Wait()
			return err
		}
		defer func() { _ = rdb.Close() }()

		g.Go(func() error {
			err := daemon.RunRedisBridge(gctx, rdb, cfg.Events.RedisChannel, server)
			// The socket side is useless without its feed
			_ = server.Shutdown()
			return err
		})
	}

	return g.Wait()
}
