package label

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/clitest"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func TestLabelLifecycle(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	card := env.AddCard(t, col.ID, "A")
	board := fmt.Sprintf("--board=%d", env.Board.ID)

	out, err := env.Run(t, LabelCmd, testutil.Member, "create", board, "--name=bug", "--color=#FF0000", "--json")
	require.NoError(t, err, out)
	var label models.Label
	clitest.Decode(t, out, &label)
	assert.Equal(t, "bug", label.Name)

	_, err = env.Run(t, LabelCmd, testutil.Member, "create", board, "--name=BUG")
	assert.Equal(t, cli.ExitStale, cli.ExitCodeFor(err))

	_, err = env.Run(t, LabelCmd, testutil.Member, "create", board, "--name=ui", "--color=red")
	assert.Equal(t, cli.ExitValidation, cli.ExitCodeFor(err))

	_, err = env.Run(t, LabelCmd, testutil.Member, "attach", fmt.Sprint(card.ID), fmt.Sprint(label.ID))
	require.NoError(t, err)
	got, err := env.Store.GetCard(t.Context(), card.ID)
	require.NoError(t, err)
	require.Len(t, got.Labels, 1)
	assert.Equal(t, label.ID, got.Labels[0].ID)

	_, err = env.Run(t, LabelCmd, testutil.Viewer, "detach", fmt.Sprint(card.ID), fmt.Sprint(label.ID))
	assert.Equal(t, cli.ExitForbidden, cli.ExitCodeFor(err))

	_, err = env.Run(t, LabelCmd, testutil.Member, "detach", fmt.Sprint(card.ID), fmt.Sprint(label.ID))
	require.NoError(t, err)

	out, err = env.Run(t, LabelCmd, testutil.Viewer, "list", board)
	require.NoError(t, err)
	assert.Contains(t, out, "bug")

	_, err = env.Run(t, LabelCmd, testutil.Member, "delete", fmt.Sprint(label.ID))
	require.NoError(t, err)

	assert.Equal(t, []events.Type{events.TypeLabelsChanged, events.TypeLabelsChanged}, env.Events.Types())
}
