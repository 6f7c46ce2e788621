package database

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestStore opens a private in-memory database with the full schema
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// testBoard is a board with two columns, X=[A, B] and Y=[C]
type testBoard struct {
	org   types.OrgID
	board *models.Board
	x, y  *models.Column
	a, b  *models.Card
	c     *models.Card
}

func seedBoard(t *testing.T, store *SQLiteStore) testBoard {
	t.Helper()
	ctx := context.Background()

	org, err := store.CreateOrganization(ctx, "Acme")
	if err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	board, err := store.CreateBoard(ctx, org.ID, "Roadmap")
	if err != nil {
		t.Fatalf("CreateBoard failed: %v", err)
	}

	tb := testBoard{org: org.ID, board: board}
	tb.x = createTestColumn(t, store, board.ID, "X", 0)
	tb.y = createTestColumn(t, store, board.ID, "Y", 1)
	tb.a = createTestCard(t, store, tb.x.ID, "A", 0)
	tb.b = createTestCard(t, store, tb.x.ID, "B", 1)
	tb.c = createTestCard(t, store, tb.y.ID, "C", 0)
	return tb
}

func createTestColumn(t *testing.T, store *SQLiteStore, board types.BoardID, name string, position int) *models.Column {
	t.Helper()
	col, err := store.CreateColumn(context.Background(), board, name, position)
	if err != nil {
		t.Fatalf("CreateColumn(%s) failed: %v", name, err)
	}
	return col
}

func createTestCard(t *testing.T, store *SQLiteStore, column types.ColumnID, title string, position int) *models.Card {
	t.Helper()
	card, err := store.CreateCard(context.Background(), CreateCardParams{
		ColumnID: column,
		Title:    title,
		Position: position,
	})
	if err != nil {
		t.Fatalf("CreateCard(%s) failed: %v", title, err)
	}
	return card
}

// cardTitles returns the titles of a column's cards in position order
func cardTitles(t *testing.T, store *SQLiteStore, column types.ColumnID) []string {
	t.Helper()
	cards, err := store.ListCards(context.Background(), column)
	if err != nil {
		t.Fatalf("ListCards failed: %v", err)
	}
	titles := make([]string, len(cards))
	for i, c := range cards {
		if c.Position != i {
			t.Fatalf("card %s at position %d, expected %d", c.Title, c.Position, i)
		}
		titles[i] = c.Title
	}
	return titles
}
