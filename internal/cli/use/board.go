package use

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/types"
)

// BoardCmd returns the use board subcommand
func BoardCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board [board-id]",
		Short: "Set board context for current shell session",
		Long: `Set the current board context using environment variables.
This command outputs shell commands that should be evaluated:

  eval $(tablero use board 3)              # Use board 3
  eval $(tablero use board --clear)        # Clear board context
  tablero use board --show                 # Show current board

The TABLERO_BOARD environment variable will be set in your current shell
session only. The --board flag on other commands takes precedence over
this environment variable.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUseBoard(cmd, args, open)
		},
	}

	cmd.Flags().Bool("clear", false, "Clear the current board context")
	cmd.Flags().Bool("show", false, "Show the current board context")
	cmd.Flags().Bool("dry-run", false, "Show what would be exported without outputting shell commands")

	return cmd
}

func runUseBoard(cmd *cobra.Command, args []string, open cli.Opener) error {
	clearFlag, _ := cmd.Flags().GetBool("clear")
	showFlag, _ := cmd.Flags().GetBool("show")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	if showFlag {
		current := os.Getenv(cli.BoardEnv)
		if current == "" {
			fmt.Fprintln(out, "No board context set")
			fmt.Fprintln(out, "Use 'eval $(tablero use board <board-id>)' to set one")
			return nil
		}
		fmt.Fprintf(out, "Current board: %s\n", current)
		return nil
	}

	if clearFlag {
		if dryRun {
			fmt.Fprintf(errOut, "Would clear %s\n", cli.BoardEnv)
			return nil
		}
		fmt.Fprintf(out, "unset %s\n", cli.BoardEnv)
		fmt.Fprintln(errOut, "Cleared board context")
		return nil
	}

	if len(args) == 0 {
		return &cli.ExitCodeError{Code: cli.ExitUsage, Err: fmt.Errorf("board ID required\nUsage: eval $(tablero use board <board-id>)")}
	}
	boardID, err := cli.ParseID(args[0], "board")
	if err != nil {
		return err
	}

	c, err := cli.NewCLI(cmd, open)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close(cmd.Context()) }()

	// Only boards the acting user can read may be selected
	board, err := c.App.BoardService.GetBoard(c.Context(cmd.Context()), types.BoardID(boardID))
	if err != nil {
		_ = c.Formatter.Error(err)
		return &cli.ExitCodeError{Code: cli.ExitCodeFor(err), Err: err}
	}

	if dryRun {
		fmt.Fprintf(errOut, "Would set %s=%d (%s)\n", cli.BoardEnv, boardID, board.Name)
		return nil
	}

	fmt.Fprintf(out, "export %s=%d\n", cli.BoardEnv, boardID)
	fmt.Fprintf(errOut, "Now using board %d: %s\n", boardID, board.Name)
	return nil
}
