// Package use holds all cli commands related to setting contextual information
// e.g., tablero use ...
package use

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
)

// UseCmd returns the use parent command
func UseCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Manage contextual settings for the current shell",
		Long: `Set and manage contextual information for the current shell session.

The 'use' command allows you to set persistent context that applies to
subsequent commands, eliminating the need to repeatedly specify flags.

Examples:
  eval $(tablero use board 3)       # Use board 3
  eval $(tablero use board --clear) # Clear board context
  tablero use board --show          # Show current board`,
	}

	cmd.AddCommand(BoardCmd(open))

	return cmd
}
