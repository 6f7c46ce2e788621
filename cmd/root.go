// Package cmd assembles the tablero command tree
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/cli/board"
	"github.com/thenoetrevino/tablero/internal/cli/card"
	"github.com/thenoetrevino/tablero/internal/cli/column"
	"github.com/thenoetrevino/tablero/internal/cli/label"
	"github.com/thenoetrevino/tablero/internal/cli/org"
	"github.com/thenoetrevino/tablero/internal/cli/serve"
	"github.com/thenoetrevino/tablero/internal/cli/styles"
	"github.com/thenoetrevino/tablero/internal/cli/use"
	"github.com/thenoetrevino/tablero/internal/cli/watch"
	"github.com/thenoetrevino/tablero/internal/config"
)

// NewRootCmd builds the command tree. open is how every command reaches
// the application; tests pass one backed by a fixture store.
func NewRootCmd(open cli.Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tablero",
		Short: "Tablero - multi-tenant kanban boards",
		Long: `Tablero is a multi-tenant kanban service. Boards hold ordered columns,
columns hold ordered cards, and every move keeps positions dense.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddOutputFlags(rootCmd)

	rootCmd.AddCommand(org.OrgCmd(open))
	rootCmd.AddCommand(board.BoardCmd(open))
	rootCmd.AddCommand(column.ColumnCmd(open))
	rootCmd.AddCommand(card.CardCmd(open))
	rootCmd.AddCommand(label.LabelCmd(open))
	rootCmd.AddCommand(use.UseCmd(open))
	rootCmd.AddCommand(serve.ServeCmd(open))
	rootCmd.AddCommand(serve.MigrateCmd(open))
	rootCmd.AddCommand(watch.WatchCmd())

	return rootCmd
}

// Execute runs the CLI against the user's configuration
func Execute() error {
	if cfg, err := config.Load(); err == nil {
		styles.Init(cfg.Theme)
	} else {
		styles.Init(config.DefaultColorScheme())
	}
	return NewRootCmd(cli.DefaultOpener).Execute()
}
