package column

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/testutil"
	"github.com/thenoetrevino/tablero/internal/types"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func setupService(t *testing.T) (*testutil.Fixture, Service, *events.Recorder) {
	t.Helper()
	f := testutil.NewFixture(t)
	rec := &events.Recorder{}
	svc := NewService(services.Deps{Store: f.Store, Events: rec})
	return f, svc, rec
}

func ids(cols ...*models.Column) []types.ColumnID {
	out := make([]types.ColumnID, len(cols))
	for i, c := range cols {
		out[i] = c.ID
	}
	return out
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateColumn_Appends(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	ctx := testutil.As(testutil.Member)

	for i, name := range []string{"Todo", "Doing", "Done"} {
		col, err := svc.CreateColumn(ctx, CreateColumnRequest{BoardID: f.Board.ID, Name: name})
		require.NoError(t, err)
		if col.Position != i {
			t.Errorf("Expected %s at position %d, got %d", name, i, col.Position)
		}
	}

	assert.Equal(t, []string{"Todo", "Doing", "Done"}, f.ColumnNames(t, f.Board.ID))
	assert.Equal(t, []events.Type{events.TypeColumnCreated, events.TypeColumnCreated, events.TypeColumnCreated}, rec.Types())

	board, err := f.Store.GetBoard(context.Background(), f.Board.ID)
	require.NoError(t, err)
	assert.Equal(t, f.Board.Version+3, board.Version)
}

func TestCreateColumn_Validation(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	ctx := testutil.As(testutil.Member)

	tests := []struct {
		name string
		req  CreateColumnRequest
		want error
	}{
		{"empty name", CreateColumnRequest{BoardID: f.Board.ID, Name: "   "}, ErrEmptyName},
		{"long name", CreateColumnRequest{BoardID: f.Board.ID, Name: strings.Repeat("x", 51)}, ErrNameTooLong},
		{"bad board id", CreateColumnRequest{BoardID: 0, Name: "Todo"}, ErrInvalidBoardID},
		{"missing board", CreateColumnRequest{BoardID: 999, Name: "Todo"}, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateColumn(ctx, tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateColumn_Gate(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)

	_, err := svc.CreateColumn(testutil.As(testutil.Viewer), CreateColumnRequest{BoardID: f.Board.ID, Name: "Todo"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.CreateColumn(testutil.As(testutil.Stranger), CreateColumnRequest{BoardID: f.Board.ID, Name: "Todo"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	assert.Empty(t, f.ColumnNames(t, f.Board.ID))
	assert.Empty(t, rec.Events())
}

func TestCreateColumn_QuotaExceeded(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	quota := limits.NewAuthority(f.Store, map[string]config.PlanLimits{
		models.PlanFree: {Boards: 1, Columns: 2, Cards: 10},
	})
	svc := NewService(services.Deps{Store: f.Store, Limits: quota})
	ctx := testutil.As(testutil.Member)

	for _, name := range []string{"Todo", "Done"} {
		_, err := svc.CreateColumn(ctx, CreateColumnRequest{BoardID: f.Board.ID, Name: name})
		require.NoError(t, err)
	}

	_, err := svc.CreateColumn(ctx, CreateColumnRequest{BoardID: f.Board.ID, Name: "Overflow"})
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	assert.Equal(t, []string{"Todo", "Done"}, f.ColumnNames(t, f.Board.ID))
}

func TestCreateColumn_QuotaRecheckedInTransaction(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	f.AddColumn(t, f.Board.ID, "Todo")
	quota := limits.NewAuthority(testutil.StaleCounts{Store: f.Store}, map[string]config.PlanLimits{
		models.PlanFree: {Boards: 1, Columns: 1, Cards: 10},
	})
	svc := NewService(services.Deps{Store: f.Store, Limits: quota})

	_, err := svc.CreateColumn(testutil.As(testutil.Member), CreateColumnRequest{BoardID: f.Board.ID, Name: "Overflow"})
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)
	assert.Equal(t, []string{"Todo"}, f.ColumnNames(t, f.Board.ID))
}

// ============================================================================
// DELETE
// ============================================================================

func TestDeleteColumn_ClosesGap(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")
	b := f.AddColumn(t, f.Board.ID, "B")
	f.AddColumn(t, f.Board.ID, "C")
	f.AddCard(t, b.ID, "card in B")

	require.NoError(t, svc.DeleteColumn(testutil.As(testutil.Member), b.ID))

	assert.Equal(t, []string{"A", "C"}, f.ColumnNames(t, f.Board.ID))
	assert.Equal(t, []events.Type{events.TypeColumnDeleted}, rec.Types())

	_, err := svc.GetColumn(testutil.As(testutil.Viewer), b.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.GetColumn(testutil.As(testutil.Viewer), a.ID)
	assert.NoError(t, err)
}

func TestDeleteColumn_NotFound(t *testing.T) {
	t.Parallel()
	_, svc, _ := setupService(t)

	err := svc.DeleteColumn(testutil.As(testutil.Member), 12345)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteColumn(testutil.As(testutil.Member), 0), ErrInvalidColumnID)
}

// ============================================================================
// REORDER
// ============================================================================

func TestReorderColumns(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")
	b := f.AddColumn(t, f.Board.ID, "B")
	c := f.AddColumn(t, f.Board.ID, "C")
	ctx := testutil.As(testutil.Member)

	v1, err := svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: f.Board.ID, IDs: ids(c, a, b)})
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"C", "A", "B"}, f.ColumnNames(t, f.Board.ID)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}

	// same order again leaves the same state
	v2, err := svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: f.Board.ID, IDs: ids(c, a, b)})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, f.ColumnNames(t, f.Board.ID))
	assert.Greater(t, v2, v1)

	published := rec.Events()
	require.Len(t, published, 2)
	assert.Equal(t, ids(c, a, b), published[0].(events.ColumnsReordered).Order)
}

func TestReorderColumns_EmptyBoard(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	board := f.AddBoard(t, "Blank")
	ctx := testutil.As(testutil.Member)

	cols, err := svc.GetColumnsByBoard(ctx, board.ID)
	require.NoError(t, err)
	require.Empty(t, cols)

	v1, err := svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: board.ID, IDs: []types.ColumnID{}})
	require.NoError(t, err, "Expected the empty order of an empty board to be accepted")
	v2, err := svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: board.ID, IDs: nil})
	require.NoError(t, err)
	assert.Greater(t, v2, v1)
	assert.Empty(t, f.ColumnNames(t, board.ID))
}

func TestReorderColumns_InvalidSet(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")
	b := f.AddColumn(t, f.Board.ID, "B")
	other := f.AddColumn(t, f.AddBoard(t, "Other").ID, "Foreign")
	ctx := testutil.As(testutil.Member)

	tests := map[string][]types.ColumnID{
		"omission":  ids(a),
		"duplicate": ids(a, a),
		"foreign":   ids(a, other),
		"addition":  ids(a, b, other),
	}
	for name, order := range tests {
		_, err := svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: f.Board.ID, IDs: order})
		if !errors.Is(err, models.ErrInvalidOrderSet) {
			t.Errorf("%s: expected ErrInvalidOrderSet, got %v", name, err)
		}
	}

	assert.Equal(t, []string{"A", "B"}, f.ColumnNames(t, f.Board.ID))
	assert.Empty(t, rec.Events())
}

func TestReorderColumns_VersionConflict(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")
	b := f.AddColumn(t, f.Board.ID, "B")
	ctx := testutil.As(testutil.Member)

	board, err := f.Store.GetBoard(context.Background(), f.Board.ID)
	require.NoError(t, err)
	seen := board.Version

	_, err = svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: f.Board.ID, IDs: ids(b, a), ExpectedVersion: &seen})
	require.NoError(t, err)

	// a second writer still holding the old version is rejected
	_, err = svc.ReorderColumns(ctx, ReorderColumnsRequest{BoardID: f.Board.ID, IDs: ids(a, b), ExpectedVersion: &seen})
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.True(t, models.IsStale(err))
	assert.Equal(t, []string{"B", "A"}, f.ColumnNames(t, f.Board.ID))
}

func TestReorderColumns_ViewerForbidden(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")

	_, err := svc.ReorderColumns(testutil.As(testutil.Viewer), ReorderColumnsRequest{BoardID: f.Board.ID, IDs: ids(a)})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

// ============================================================================
// MOVE / RENAME / READ
// ============================================================================

func TestMoveColumn(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")
	f.AddColumn(t, f.Board.ID, "B")
	c := f.AddColumn(t, f.Board.ID, "C")
	ctx := testutil.As(testutil.Member)

	_, err := svc.MoveColumn(ctx, MoveColumnRequest{ColumnID: c.ID, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, f.ColumnNames(t, f.Board.ID))

	_, err = svc.MoveColumn(ctx, MoveColumnRequest{ColumnID: a.ID, Index: 99})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, f.ColumnNames(t, f.Board.ID))

	_, err = svc.MoveColumn(ctx, MoveColumnRequest{ColumnID: a.ID, Index: -1})
	assert.ErrorIs(t, err, ErrInvalidIndex)
}

func TestRenameColumn(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	a := f.AddColumn(t, f.Board.ID, "A")

	require.NoError(t, svc.RenameColumn(testutil.As(testutil.Member), a.ID, "  Backlog "))
	assert.Equal(t, []string{"Backlog"}, f.ColumnNames(t, f.Board.ID))
	assert.Equal(t, []events.Type{events.TypeColumnRenamed}, rec.Types())

	assert.ErrorIs(t, svc.RenameColumn(testutil.As(testutil.Member), a.ID, ""), ErrEmptyName)
	assert.ErrorIs(t, svc.RenameColumn(testutil.As(testutil.Viewer), a.ID, "X"), models.ErrForbidden)
}

func TestGetColumnsByBoard(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	f.AddColumn(t, f.Board.ID, "A")
	f.AddColumn(t, f.Board.ID, "B")

	cols, err := svc.GetColumnsByBoard(testutil.As(testutil.Viewer), f.Board.ID)
	require.NoError(t, err)
	assert.Len(t, cols, 2)

	_, err = svc.GetColumnsByBoard(testutil.As(testutil.Stranger), f.Board.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
