package cmd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/clitest"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func TestRootCmd_Commands(t *testing.T) {
	t.Parallel()
	root := NewRootCmd(cli.DefaultOpener)

	for _, name := range []string{"org", "board", "column", "card", "label", "use", "serve", "migrate", "watch"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected command %s, got %v (%v)", name, cmd, err)
		}
	}
	for _, flag := range []string{"json", "quiet", "as"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("Expected persistent flag --%s", flag)
		}
	}
}

func TestRootCmd_DeleteKeepsOrderDense(t *testing.T) {
	t.Parallel()
	env := clitest.New(t)
	col := env.AddColumn(t, env.Board.ID, "Todo")
	env.AddCard(t, col.ID, "A")
	b := env.AddCard(t, col.ID, "B")
	env.AddCard(t, col.ID, "C")

	root := NewRootCmd(env.Open)
	_, err := testutil.ExecuteCommand(t, root, "card", "delete", fmt.Sprint(b.ID), "--as", string(testutil.Member))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, env.CardTitles(t, col.ID))
}
