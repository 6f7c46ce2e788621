package card

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/clitest"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/testutil"
	"github.com/thenoetrevino/tablero/internal/types"
)

func TestCardCreate(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	env.AddCard(t, col.ID, "A")

	out, err := env.Run(t, CardCmd, testutil.Member, "create", fmt.Sprintf("--column=%d", col.ID), "--title=B", "--json")
	require.NoError(t, err, out)

	var card models.Card
	clitest.Decode(t, out, &card)
	if card.Position != 1 {
		t.Errorf("Expected position 1, got %d", card.Position)
	}
	if card.BoardID != env.Board.ID {
		t.Errorf("Expected board %d, got %d", env.Board.ID, card.BoardID)
	}

	out, err = env.Run(t, CardCmd, testutil.Member, "create", fmt.Sprintf("--column=%d", col.ID), "--title=C", "--quiet")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+\n$`, out)

	assert.Equal(t, []string{"A", "B", "C"}, env.CardTitles(t, col.ID))
	assert.Equal(t, []events.Type{events.TypeCardCreated, events.TypeCardCreated}, env.Events.Types())
}

func TestCardCreate_Errors(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	column := fmt.Sprintf("--column=%d", col.ID)

	tests := []struct {
		name     string
		user     types.UserID
		args     []string
		wantCode int
		wantErr  string
	}{
		{"viewer", testutil.Viewer, []string{column, "--title=X"}, cli.ExitForbidden, "FORBIDDEN"},
		{"blank title", testutil.Member, []string{column, "--title=  "}, cli.ExitValidation, "VALIDATION_FAILED"},
		{"unknown column", testutil.Member, []string{"--column=9999", "--title=X"}, cli.ExitNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.Run(t, CardCmd, tt.user, append([]string{"create", "--json"}, tt.args...)...)
			if got := cli.ExitCodeFor(err); got != tt.wantCode {
				t.Errorf("Expected exit %d, got %d (%v)", tt.wantCode, got, err)
			}
			res := clitest.Decode(t, out, nil)
			if res.Success || res.Error.Code != tt.wantErr {
				t.Errorf("Expected error %s, got %s", tt.wantErr, out)
			}
		})
	}
	assert.Empty(t, env.CardTitles(t, col.ID))
}

func TestCardShow(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	card := env.AddCard(t, col.ID, "Write notes")

	_, err := env.Run(t, CardCmd, testutil.Member, "update", fmt.Sprint(card.ID), "--description=# Goal\nship it")
	require.NoError(t, err)

	out, err := env.Run(t, CardCmd, testutil.Viewer, "show", fmt.Sprint(card.ID))
	require.NoError(t, err)
	for _, want := range []string{"Write notes", "Description", "Goal", "ship it"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	_, err = env.Run(t, CardCmd, testutil.Stranger, "show", fmt.Sprint(card.ID))
	assert.Equal(t, cli.ExitForbidden, cli.ExitCodeFor(err))
}

func TestCardUpdate_NothingToUpdate(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	card := env.AddCard(t, col.ID, "A")

	_, err := env.Run(t, CardCmd, testutil.Member, "update", fmt.Sprint(card.ID))
	assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(err))
}

func TestCardReorder(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	a := env.AddCard(t, col.ID, "A")
	b := env.AddCard(t, col.ID, "B")
	c := env.AddCard(t, col.ID, "C")
	column := fmt.Sprintf("--column=%d", col.ID)
	ids := fmt.Sprintf("--ids=%d,%d,%d", c.ID, a.ID, b.ID)

	out, err := env.Run(t, CardCmd, testutil.Member, "reorder", column, ids, "--json")
	require.NoError(t, err, out)
	var res reorderResult
	clitest.Decode(t, out, &res)
	assert.Equal(t, []string{"C", "A", "B"}, env.CardTitles(t, col.ID))

	out, err = env.Run(t, CardCmd, testutil.Member, "reorder", column, fmt.Sprintf("--ids=%d,%d", a.ID, b.ID), "--json")
	assert.Equal(t, cli.ExitStale, cli.ExitCodeFor(err))
	stale := clitest.Decode(t, out, nil)
	assert.Equal(t, "INVALID_ORDER_SET", stale.Error.Code)

	out, err = env.Run(t, CardCmd, testutil.Member, "reorder", column, ids, fmt.Sprintf("--version=%d", res.Version+1), "--json")
	assert.Equal(t, cli.ExitStale, cli.ExitCodeFor(err))
	assert.Equal(t, "CONFLICT", clitest.Decode(t, out, nil).Error.Code)

	_, err = env.Run(t, CardCmd, testutil.Member, "reorder", column, fmt.Sprintf("--ids=%d,%d,%d", b.ID, c.ID, a.ID), fmt.Sprintf("--version=%d", res.Version))
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A"}, env.CardTitles(t, col.ID))
}

func TestCardMove(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	x := env.AddColumn(t, env.Board.ID, "X")
	y := env.AddColumn(t, env.Board.ID, "Y")
	a := env.AddCard(t, x.ID, "A")
	env.AddCard(t, x.ID, "B")
	env.AddCard(t, y.ID, "C")

	out, err := env.Run(t, CardCmd, testutil.Member, "move", fmt.Sprint(a.ID), fmt.Sprintf("--column=%d", y.ID), "--index=99")
	require.NoError(t, err, out)
	assert.Contains(t, out, "cards placed")

	assert.Equal(t, []string{"B"}, env.CardTitles(t, x.ID))
	assert.Equal(t, []string{"C", "A"}, env.CardTitles(t, y.ID))
}

func TestCardBatchMove(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	x := env.AddColumn(t, env.Board.ID, "X")
	y := env.AddColumn(t, env.Board.ID, "Y")
	a := env.AddCard(t, x.ID, "A")
	b := env.AddCard(t, x.ID, "B")
	c := env.AddCard(t, y.ID, "C")
	board := fmt.Sprintf("--board=%d", env.Board.ID)
	move := func(card *models.Card, col *models.Column, index int) string {
		return fmt.Sprintf("--move=%d:%d:%d", card.ID, col.ID, index)
	}

	out, err := env.Run(t, CardCmd, testutil.Member, "batch-move", board,
		move(a, y, 0), move(b, x, 0), move(c, y, 1), "--json")
	require.NoError(t, err, out)

	var res moveResult
	clitest.Decode(t, out, &res)
	assert.Len(t, res.Placements, 3)
	assert.Equal(t, map[types.ColumnID]int{x.ID: 1, y.ID: 1}, res.Versions)
	assert.Equal(t, []string{"B"}, env.CardTitles(t, x.ID))
	assert.Equal(t, []string{"A", "C"}, env.CardTitles(t, y.ID))

	// leaving a gap in Y rejects the whole batch
	out, err = env.Run(t, CardCmd, testutil.Member, "batch-move", board, move(a, x, 1), "--json")
	assert.Equal(t, cli.ExitStale, cli.ExitCodeFor(err))
	assert.Equal(t, "INVALID_ORDER_SET", clitest.Decode(t, out, nil).Error.Code)
	assert.Equal(t, []string{"B"}, env.CardTitles(t, x.ID))
	assert.Equal(t, []string{"A", "C"}, env.CardTitles(t, y.ID))

	_, err = env.Run(t, CardCmd, testutil.Member, "batch-move", board, "--move=1:2")
	assert.Equal(t, cli.ExitDataErr, cli.ExitCodeFor(err))

	_, err = env.Run(t, CardCmd, testutil.Member, "batch-move", board)
	assert.Equal(t, cli.ExitUsage, cli.ExitCodeFor(err))

	assert.Equal(t, []events.Type{events.TypeCardsMoved}, env.Events.Types())
}

func TestCardDelete(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	a := env.AddCard(t, col.ID, "A")
	env.AddCard(t, col.ID, "B")

	out, err := env.Run(t, CardCmd, testutil.Member, "delete", fmt.Sprint(a.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	out, err = env.Run(t, CardCmd, testutil.Viewer, "list", fmt.Sprintf("--column=%d", col.ID), "--json")
	require.NoError(t, err)
	var cards []*models.Card
	clitest.Decode(t, out, &cards)
	require.Len(t, cards, 1)
	if cards[0].Title != "B" || cards[0].Position != 0 {
		t.Errorf("Expected B at position 0, got %s at %d", cards[0].Title, cards[0].Position)
	}
}
