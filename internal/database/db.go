// Package database handles the initialization and connection to the SQLite db
// and the repositories built on it.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// InitDB opens the SQLite database at path, applies the connection PRAGMAs
// and runs migrations. ":memory:" opens a private in-memory database.
func InitDB(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// immediate transactions take the write lock at BEGIN, so a transaction
	// that reads positions cannot lose them to another writer before it writes
	db, err := sql.Open("sqlite", "file:"+path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	closeOnErr := func(err error) (*sql.DB, error) {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing db", zap.Error(closeErr))
		}
		return nil, err
	}

	// Configure connection pool to reduce contention. A single connection
	// also keeps an in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",   // required for CASCADE deletions
		"PRAGMA journal_mode = WAL",  // readers do not block the writer
		"PRAGMA busy_timeout = 5000", // SQLite will retry for this duration
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			logger.Error("failed to apply pragma", zap.String("pragma", p), zap.Error(err))
			return closeOnErr(fmt.Errorf("failed to apply %q: %w", p, err))
		}
	}

	if err := db.PingContext(ctx); err != nil {
		return closeOnErr(fmt.Errorf("database ping failed: %w", err))
	}

	if err := runMigrations(ctx, db); err != nil {
		return closeOnErr(fmt.Errorf("failed to run migrations: %w", err))
	}

	return db, nil
}

// DefaultPath returns ~/.tablero/tablero.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tablero", "tablero.db"), nil
}
