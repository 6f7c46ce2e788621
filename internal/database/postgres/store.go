// Package postgres implements database.Store on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/thenoetrevino/tablero/internal/database"
)

// Options configures the connection pool
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

// Store is the Store backed by PostgreSQL
type Store struct {
	*queries
	db     *gorm.DB
	logger *zap.Logger
}

var _ database.Store = (*Store)(nil)

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = 200 * time.Millisecond
	}

	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger:      newZapLogger(logger, gormlogger.Warn, opts.SlowThreshold),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", zap.String("driver", "postgres"))
	return &Store{queries: &queries{db: db}, db: db, logger: logger}, nil
}

// Migrate creates or updates the schema
func (s *Store) Migrate(ctx context.Context) error {
	s.logger.Info("running database migrations")
	err := s.db.WithContext(ctx).AutoMigrate(
		&orgRow{},
		&membershipRow{},
		&subscriptionRow{},
		&boardRow{},
		&columnRow{},
		&cardRow{},
		&labelRow{},
		&cardLabelRow{},
	)
	if err != nil {
		s.logger.Error("failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InTx runs fn inside a transaction. Rows read through Lock* stay locked
// until commit.
func (s *Store) InTx(ctx context.Context, fn func(q database.Queries) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&queries{db: tx})
	})
	return classify(err)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	s.logger.Info("database connection closed")
	return nil
}

// SQLSTATE codes that mean "retry with a fresh transaction"
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// classify wraps serialization failures and deadlocks in a TxConflictError
func classify(err error) error {
	if err == nil {
		return nil
	}
	var conflict *database.TxConflictError
	if errors.As(err, &conflict) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return &database.TxConflictError{Err: err}
		}
	}
	return err
}
