package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Queries is the unified set of data operations. It is composed of smaller,
// domain-specific interfaces so consumers can depend on only what they use.
type Queries interface {
	OrgRepository
	SubscriptionRepository
	BoardRepository
	ColumnRepository
	CardRepository
	LabelRepository
	ResourceCounter
}

// Store is a Queries backed by a datastore that supports transactions.
// InTx runs fn against a transaction-bound Queries and commits when fn
// returns nil. Every read and write fn performs must go through the
// Queries it receives.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}

// TxConflictError reports that the datastore aborted a transaction because
// of a concurrent writer (SQLite busy, Postgres serialization failure or
// deadlock). It matches models.ErrConflict.
type TxConflictError struct {
	Err error
}

func (e *TxConflictError) Error() string {
	return fmt.Sprintf("transaction conflict: %v", e.Err)
}

func (e *TxConflictError) Unwrap() error {
	return e.Err
}

func (e *TxConflictError) Is(target error) bool {
	return target == models.ErrConflict
}

// RunInTx runs fn in a transaction and retries it once with a fresh
// transaction when the datastore reports a conflict. Version mismatches
// detected by fn itself are returned as is.
func RunInTx(ctx context.Context, store Store, fn func(q Queries) error) error {
	err := store.InTx(ctx, fn)

	var conflict *TxConflictError
	if !errors.As(err, &conflict) {
		return err
	}
	if ctx.Err() != nil {
		return err
	}
	return store.InTx(ctx, fn)
}
