// Package app wires tablero's datastore, gates, event sinks and services.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/billing"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/database/postgres"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/services"
	boardservice "github.com/thenoetrevino/tablero/internal/services/board"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	columnservice "github.com/thenoetrevino/tablero/internal/services/column"
	labelservice "github.com/thenoetrevino/tablero/internal/services/label"
	orgservice "github.com/thenoetrevino/tablero/internal/services/org"
)

// App holds all application services and the resources they share.
// Close releases them in reverse order of creation.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store  database.Store
	Authz  authz.Authorizer
	Limits limits.Authority
	Rates  limits.RateStore
	Events events.Publisher
	Redis  *redis.Client

	OrgService    orgservice.Service
	BoardService  boardservice.Service
	ColumnService columnservice.Service
	CardService   cardservice.Service
	LabelService  labelservice.Service
	Billing       *billing.Syncer

	closers []func(context.Context) error
}

// New builds the application container from cfg. Resources not supplied
// through opts are created from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (_ *App, err error) {
	o := appConfig{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	a := &App{Config: cfg, Logger: o.logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	if a.Store = o.store; a.Store == nil {
		if a.Store, err = OpenStore(ctx, cfg.Database, a.Logger); err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return a.Store.Close() })
	}

	if needsRedis(cfg) {
		if a.Redis, err = limits.NewRedisClient(ctx, cfg.Redis, a.Logger); err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return a.Redis.Close() })
	}

	var rdb redis.Cmdable
	if a.Redis != nil {
		rdb = a.Redis
	}
	if a.Rates, err = limits.NewRateStore(cfg.RateLimit, rdb, a.Logger); err != nil {
		return nil, err
	}

	a.Events = o.publisher
	if a.Events == nil {
		if a.Events, err = a.newPublisher(ctx); err != nil {
			return nil, err
		}
	}

	a.Authz = authz.NewAuthorizer(a.Store)
	a.Limits = limits.NewAuthority(a.Store, cfg.Plans)

	deps := services.Deps{
		Store:  a.Store,
		Authz:  a.Authz,
		Limits: a.Limits,
		Events: a.Events,
		Logger: a.Logger,
	}
	a.OrgService = orgservice.NewService(deps)
	a.BoardService = boardservice.NewService(deps)
	a.ColumnService = columnservice.NewService(deps)
	a.CardService = cardservice.NewService(deps)
	a.LabelService = labelservice.NewService(deps)
	a.Billing = billing.NewSyncer(a.Store, cfg.Billing, a.Logger)

	return a, nil
}

// OpenStore connects to the datastore cfg selects and brings its schema up
// to date
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (database.Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return database.OpenSQLite(ctx, cfg.Path, logger)
	case "postgres":
		store, err := postgres.Open(ctx, postgres.Options{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// newPublisher builds the sink cfg.Events selects behind a Dispatcher, so
// services never wait on the network. A daemon that is not running only
// disables realtime updates.
func (a *App) newPublisher(ctx context.Context) (events.Publisher, error) {
	cfg := a.Config.Events

	var next events.Publisher
	switch cfg.Mode {
	case config.EventsNone:
		return events.Nop{}, nil
	case config.EventsSocket:
		client := events.NewClient(cfg.SocketPath, a.Logger)
		if err := client.Connect(ctx); err != nil {
			de := events.ClassifyDaemonError(err)
			a.Logger.Info("daemon not reachable, realtime updates disabled",
				zap.String("socket", cfg.SocketPath),
				zap.String("reason", de.Kind.Code()),
				zap.String("hint", de.Hint),
				zap.Error(err))
			_ = client.Close()
			return events.Nop{}, nil
		}
		a.onClose(func(context.Context) error { return client.Close() })
		next = client
	case config.EventsRedis:
		if a.Redis == nil {
			return nil, errors.New("redis events require a redis client")
		}
		next = events.NewRedisPublisher(a.Redis, cfg.RedisChannel)
	default:
		return nil, fmt.Errorf("unknown events mode %q", cfg.Mode)
	}

	d := events.NewDispatcher(next, cfg.QueueSize, a.Logger)
	a.onClose(d.Close)
	return d, nil
}

func needsRedis(cfg *config.Config) bool {
	return cfg.RateLimit.Backend == "redis" || cfg.Events.Mode == config.EventsRedis
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close drains the event queue and closes connections, last opened first
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
