// Package cli holds what every tablero command shares: opening the
// application, the acting user, output formatting and exit codes.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/authz"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/logging"
	"github.com/thenoetrevino/tablero/internal/types"
	"github.com/thenoetrevino/tablero/internal/user"
)

// Opener builds the application for one command invocation
type Opener func(ctx context.Context) (*app.App, error)

// DefaultOpener loads the user's config and opens the configured
// datastore and event sink
func DefaultOpener(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, app.WithLogger(logger))
}

// CLI represents the CLI application context
type CLI struct {
	App       *app.App
	Formatter *OutputFormatter
	Actor     types.UserID
}

// NewCLI opens the application and resolves the acting user from --as,
// falling back to $TABLERO_USER and then the OS username
func NewCLI(cmd *cobra.Command, open Opener) (*CLI, error) {
	a, err := open(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	actor := user.Actor()
	if as, _ := cmd.Flags().GetString("as"); as != "" {
		actor = types.UserID(as)
	}

	return &CLI{
		App:       a,
		Formatter: NewFormatter(cmd),
		Actor:     actor,
	}, nil
}

// Context returns ctx carrying the acting user
func (c *CLI) Context(ctx context.Context) context.Context {
	return authz.WithActor(ctx, c.Actor)
}

// Close releases the application's resources
func (c *CLI) Close(ctx context.Context) error {
	return c.App.Close(ctx)
}

// AddOutputFlags registers the persistent flags every command reads
func AddOutputFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("quiet", false, "Minimal output (ID only)")
	cmd.PersistentFlags().String("as", "", "Act as this user (default: OS username)")
}
