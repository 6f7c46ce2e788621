package database

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding, all
// sharing one DBTX.
type Repository struct {
	*OrgRepo
	*SubscriptionRepo
	*BoardRepo
	*ColumnRepo
	*CardRepo
	*LabelRepo
}

// NewRepository creates a new Repository instance over a connection or a
// transaction.
func NewRepository(db DBTX) *Repository {
	return &Repository{
		OrgRepo:          &OrgRepo{db: db},
		SubscriptionRepo: &SubscriptionRepo{db: db},
		BoardRepo:        &BoardRepo{db: db},
		ColumnRepo:       &ColumnRepo{db: db},
		CardRepo:         &CardRepo{db: db},
		LabelRepo:        &LabelRepo{db: db},
	}
}

// SQLiteStore is the Store backed by the embedded SQLite database
type SQLiteStore struct {
	*Repository
	db     *sql.DB
	logger *zap.Logger
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps a database opened with InitDB
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{
		Repository: NewRepository(db),
		db:         db,
		logger:     logger,
	}
}

// OpenSQLite runs InitDB and wraps the result
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := InitDB(ctx, path, logger)
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(db, logger), nil
}

// InTx runs fn inside an immediate transaction
func (s *SQLiteStore) InTx(ctx context.Context, fn func(q Queries) error) error {
	return withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		return fn(NewRepository(tx))
	})
}

// DB exposes the underlying connection pool
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
