package handler

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/cli"
)

func parsed(t *testing.T, args []string, setup func(*cobra.Command)) *Arguments {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	setup(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return NewArguments(cmd, cmd.Flags().Args())
}

func TestArguments_Flags(t *testing.T) {
	t.Parallel()

	args := parsed(t, []string{"--name=Todo", "--column=3", "--force", "--move=1:2:0", "--move=4:2:1", "17"}, func(cmd *cobra.Command) {
		cmd.Flags().String("name", "", "")
		cmd.Flags().String("unset", "dflt", "")
		cmd.Flags().Int("column", 0, "")
		cmd.Flags().Bool("force", false, "")
		cmd.Flags().StringArray("move", nil, "")
	})

	assert.Equal(t, "Todo", args.GetString("name", ""))
	assert.Equal(t, "fallback", args.GetString("unset", "fallback"), "unset flags are not in the map")
	assert.True(t, args.GetBool("force"))
	assert.Nil(t, args.Version())

	id, err := args.RequireID("column")
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	pos, err := args.ID(0, "card")
	require.NoError(t, err)
	assert.Equal(t, 17, pos)

	_, err = args.ID(1, "card")
	assert.Equal(t, cli.ExitUsage, cli.ExitCodeFor(err))

	moves, err := args.Moves()
	require.NoError(t, err)
	assert.Equal(t, []cli.Move{{CardID: 1, ColumnID: 2, Index: 0}, {CardID: 4, ColumnID: 2, Index: 1}}, moves)
}

func TestArguments_Missing(t *testing.T) {
	t.Parallel()

	args := parsed(t, []string{"--column=-2", "--version=0"}, func(cmd *cobra.Command) {
		cmd.Flags().Int("column", 0, "")
		cmd.Flags().Int("board", 0, "")
		cmd.Flags().Int("version", 0, "")
		cmd.Flags().String("ids", "", "")
		cmd.Flags().StringArray("move", nil, "")
	})

	if _, err := args.RequireID("column"); cli.ExitCodeFor(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for negative ID, got %v", err)
	}
	if _, err := args.RequireID("board"); cli.ExitCodeFor(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for missing flag, got %v", err)
	}
	if _, err := args.IDList("ids"); cli.ExitCodeFor(err) != cli.ExitUsage {
		t.Errorf("Expected usage error for missing list, got %v", err)
	}
	if _, err := args.Moves(); cli.ExitCodeFor(err) != cli.ExitUsage {
		t.Errorf("Expected usage error without moves, got %v", err)
	}

	// an explicit zero is still a version check
	if v := args.Version(); v == nil || *v != 0 {
		t.Errorf("Expected version 0, got %v", v)
	}
}
