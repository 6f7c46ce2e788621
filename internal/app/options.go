package app

import (
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/events"
)

// Option is a functional option for configuring App initialization
type Option func(*appConfig)

// appConfig holds what callers may supply instead of the config defaults
type appConfig struct {
	store     database.Store
	publisher events.Publisher
	logger    *zap.Logger
}

// WithStore uses store instead of opening the configured datastore. The
// caller keeps ownership: App.Close does not close it.
func WithStore(store database.Store) Option {
	return func(cfg *appConfig) {
		cfg.store = store
	}
}

// WithEventPublisher sets the event publisher for the application
func WithEventPublisher(p events.Publisher) Option {
	return func(cfg *appConfig) {
		cfg.publisher = p
	}
}

// WithLogger sets the logger for the application
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *appConfig) {
		cfg.logger = logger
	}
}
