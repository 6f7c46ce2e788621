package board

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/limits"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func setupService(t *testing.T) (*testutil.Fixture, Service, *events.Recorder) {
	t.Helper()
	f := testutil.NewFixture(t)
	rec := &events.Recorder{}
	return f, NewService(services.Deps{Store: f.Store, Events: rec}), rec
}

func TestCreateBoard(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)

	board, err := svc.CreateBoard(testutil.As(testutil.Member), CreateBoardRequest{OrgID: f.Org.ID, Name: " Sprint 12 "})
	require.NoError(t, err)
	assert.Equal(t, "Sprint 12", board.Name)
	assert.Equal(t, 0, board.Version)
	assert.Equal(t, []events.Type{events.TypeBoardCreated}, rec.Types())

	boards, err := svc.ListBoards(testutil.As(testutil.Viewer), f.Org.ID)
	require.NoError(t, err)
	if len(boards) != 2 {
		t.Errorf("Expected 2 boards, got %d", len(boards))
	}
}

func TestCreateBoard_Gate(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	quota := limits.NewAuthority(f.Store, map[string]config.PlanLimits{
		models.PlanFree: {Boards: 1, Columns: 5, Cards: 5},
	})
	svc := NewService(services.Deps{Store: f.Store, Limits: quota})

	_, err := svc.CreateBoard(testutil.As(testutil.Viewer), CreateBoardRequest{OrgID: f.Org.ID, Name: "B"})
	assert.ErrorIs(t, err, models.ErrForbidden)

	// the fixture's board already uses the only slot
	_, err = svc.CreateBoard(testutil.As(testutil.Member), CreateBoardRequest{OrgID: f.Org.ID, Name: "B"})
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)

	_, err = svc.CreateBoard(testutil.As(testutil.Member), CreateBoardRequest{OrgID: 999, Name: "B"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.CreateBoard(testutil.As(testutil.Member), CreateBoardRequest{OrgID: f.Org.ID, Name: ""})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestGetBoardView(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)
	todo := f.AddColumn(t, f.Board.ID, "Todo")
	f.AddColumn(t, f.Board.ID, "Done")
	f.AddCard(t, todo.ID, "A")
	f.AddCard(t, todo.ID, "B")

	view, err := svc.GetBoardView(testutil.As(testutil.Viewer), f.Board.ID)
	require.NoError(t, err)

	require.Len(t, view.Columns, 2)
	assert.Equal(t, "Todo", view.Columns[0].Name)
	assert.Equal(t, "Done", view.Columns[1].Name)
	require.Len(t, view.Columns[0].Cards, 2)
	assert.Equal(t, "B", view.Columns[0].Cards[1].Title)
	assert.NotNil(t, view.Columns[1].Cards)
	assert.Empty(t, view.Columns[1].Cards)

	_, err = svc.GetBoardView(testutil.As(testutil.Stranger), f.Board.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteBoard(t *testing.T) {
	t.Parallel()
	f, svc, rec := setupService(t)
	col := f.AddColumn(t, f.Board.ID, "Todo")
	f.AddCard(t, col.ID, "A")

	err := svc.DeleteBoard(testutil.As(testutil.Member), DeleteBoardRequest{ID: f.Board.ID})
	assert.ErrorIs(t, err, models.ErrForbidden)

	err = svc.DeleteBoard(testutil.As(testutil.Owner), DeleteBoardRequest{ID: f.Board.ID})
	assert.ErrorIs(t, err, ErrBoardNotEmpty)

	require.NoError(t, svc.DeleteBoard(testutil.As(testutil.Owner), DeleteBoardRequest{ID: f.Board.ID, Force: true}))
	assert.Equal(t, []events.Type{events.TypeBoardDeleted}, rec.Types())

	_, err = svc.GetBoard(testutil.As(testutil.Owner), f.Board.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRenameBoard(t *testing.T) {
	t.Parallel()
	f, svc, _ := setupService(t)

	require.NoError(t, svc.RenameBoard(testutil.As(testutil.Member), f.Board.ID, "Q3"))
	board, err := svc.GetBoard(testutil.As(testutil.Viewer), f.Board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q3", board.Name)

	assert.ErrorIs(t, svc.RenameBoard(testutil.As(testutil.Viewer), f.Board.ID, "X"), models.ErrForbidden)
	assert.ErrorIs(t, svc.RenameBoard(testutil.As(testutil.Member), 0, "X"), ErrInvalidBoardID)
}

func TestCreateBoard_QuotaRecheckedInTransaction(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	quota := limits.NewAuthority(testutil.StaleCounts{Store: f.Store}, map[string]config.PlanLimits{
		models.PlanFree: {Boards: 1, Columns: 5, Cards: 5},
	})
	svc := NewService(services.Deps{Store: f.Store, Limits: quota})

	_, err := svc.CreateBoard(testutil.As(testutil.Member), CreateBoardRequest{OrgID: f.Org.ID, Name: "Second"})
	assert.ErrorIs(t, err, models.ErrQuotaExceeded)

	boards, err := f.Store.ListBoards(context.Background(), f.Org.ID)
	require.NoError(t, err)
	assert.Len(t, boards, 1, "Expected the fixture board only")
}
