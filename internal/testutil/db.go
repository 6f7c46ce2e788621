// Package testutil holds fixtures shared by service, api and cli tests.
package testutil

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/database"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Users seeded by NewFixture
const (
	Owner    types.UserID = "olive"
	Member   types.UserID = "mia"
	Viewer   types.UserID = "victor"
	Stranger types.UserID = "stan"
)

// NewStore creates an in-memory SQLite store with the full schema
func NewStore(t *testing.T) *database.SQLiteStore {
	t.Helper()
	store, err := database.OpenSQLite(context.Background(), ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// As returns a background context acting as user
func As(user types.UserID) context.Context {
	return authz.WithActor(context.Background(), user)
}

// Fixture is an organization with an owner, a member and a viewer, and one
// empty board
type Fixture struct {
	Store *database.SQLiteStore
	Org   *models.Organization
	Board *models.Board
}

// NewFixture seeds a fresh store
func NewFixture(t *testing.T) *Fixture {
	t.Helper()
	store := NewStore(t)
	ctx := context.Background()

	org, err := store.CreateOrganization(ctx, "Acme")
	if err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	for user, role := range map[types.UserID]types.Role{
		Owner:  types.RoleOwner,
		Member: types.RoleMember,
		Viewer: types.RoleViewer,
	} {
		if err := store.UpsertMembership(ctx, org.ID, user, role); err != nil {
			t.Fatalf("UpsertMembership(%s) failed: %v", user, err)
		}
	}

	board, err := store.CreateBoard(ctx, org.ID, "Roadmap")
	if err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}
	return &Fixture{Store: store, Org: org, Board: board}
}

// AddBoard creates another board in the fixture's organization
func (f *Fixture) AddBoard(t *testing.T, name string) *models.Board {
	t.Helper()
	board, err := f.Store.CreateBoard(context.Background(), f.Org.ID, name)
	if err != nil {
		t.Fatalf("CreateBoard(%s) failed: %v", name, err)
	}
	return board
}

// AddColumn appends a column to board directly through the store
func (f *Fixture) AddColumn(t *testing.T, board types.BoardID, name string) *models.Column {
	t.Helper()
	ctx := context.Background()
	count, err := f.Store.CountColumns(ctx, board)
	if err != nil {
		t.Fatalf("CountColumns failed: %v", err)
	}
	col, err := f.Store.CreateColumn(ctx, board, name, count)
	if err != nil {
		t.Fatalf("CreateColumn(%s) failed: %v", name, err)
	}
	return col
}

// AddCard appends a card to column directly through the store
func (f *Fixture) AddCard(t *testing.T, column types.ColumnID, title string) *models.Card {
	t.Helper()
	ctx := context.Background()
	count, err := f.Store.CountCards(ctx, column)
	if err != nil {
		t.Fatalf("CountCards failed: %v", err)
	}
	card, err := f.Store.CreateCard(ctx, database.CreateCardParams{
		ColumnID: column,
		Title:    title,
		Position: count,
	})
	if err != nil {
		t.Fatalf("CreateCard(%s) failed: %v", title, err)
	}
	return card
}

// CardTitles returns the titles of column's cards in position order and
// fails the test if their positions are not exactly 0..N-1
func (f *Fixture) CardTitles(t *testing.T, column types.ColumnID) []string {
	t.Helper()
	cards, err := f.Store.ListCards(context.Background(), column)
	if err != nil {
		t.Fatalf("ListCards failed: %v", err)
	}
	titles := make([]string, len(cards))
	for i, c := range cards {
		if c.Position != i {
			t.Fatalf("Expected card %q at position %d, got %d", c.Title, i, c.Position)
		}
		titles[i] = c.Title
	}
	return titles
}

// ColumnNames returns the names of board's columns in position order and
// fails the test if their positions are not exactly 0..N-1
func (f *Fixture) ColumnNames(t *testing.T, board types.BoardID) []string {
	t.Helper()
	cols, err := f.Store.ListColumns(context.Background(), board)
	if err != nil {
		t.Fatalf("ListColumns failed: %v", err)
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		if c.Position != i {
			t.Fatalf("Expected column %q at position %d, got %d", c.Name, i, c.Position)
		}
		names[i] = c.Name
	}
	return names
}

// StaleCounts reports every organization as owning nothing, like a quota
// read taken before a concurrent create committed
type StaleCounts struct {
	database.Store
}

func (StaleCounts) CountResources(context.Context, types.OrgID, types.Resource) (int, error) {
	return 0, nil
}
