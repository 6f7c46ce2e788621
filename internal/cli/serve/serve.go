// Package serve holds the commands that run or prepare the HTTP API
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/thenoetrevino/tablero/internal/api"
	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/cli"
)

// shutdownTimeout bounds how long in-flight requests may finish
const shutdownTimeout = 10 * time.Second

// ServeCmd returns the serve command
func ServeCmd(open cli.Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the multi-tenant HTTP API until interrupted. Requests authenticate
with a bearer JWT whose subject is the acting user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := open(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			if cmd.Flags().Changed("port") {
				a.Config.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			return Run(ctx, a)
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (default from config)")
	return cmd
}

// Run serves the API for a until ctx is done, then shuts it down gracefully
func Run(ctx context.Context, a *app.App) error {
	if a.Config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (or TABLERO_JWT_SECRET) must be set to serve the API")
	}

	srv := api.NewServer(a.Config, api.Services{
		Orgs:    a.OrgService,
		Boards:  a.BoardService,
		Columns: a.ColumnService,
		Cards:   a.CardService,
		Labels:  a.LabelService,
		Billing: a.Billing,
	}, a.Rates, a.Logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("api listening", zap.String("addr", a.Config.Server.Addr()))
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.Logger.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// MigrateCmd returns the migrate command
func MigrateCmd(open cli.Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Opening the application brings the schema up to date
			a, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = a.Close(context.Background()) }()

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", a.Config.Database.Driver)
			return err
		},
	}
}
