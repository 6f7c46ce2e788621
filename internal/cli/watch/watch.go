// Package watch follows realtime board events from the daemon
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/types"
)

// WatchCmd returns the watch command
func WatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print board changes as they happen",
		Long: `Subscribe to the realtime daemon and print one line per change.
Without --board every board is followed. Requires the daemon (tablero-daemon)
to be running.

Examples:
  tablero watch --board=3
  tablero watch --json | jq .type
`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
	cmd.Flags().Int("board", 0, "Board to follow (0 = all)")
	cmd.Flags().String("socket", "", "Daemon socket (default from config)")
	cmd.Flags().Int("count", 0, "Exit after this many events (0 = run until interrupted)")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	socket, _ := cmd.Flags().GetString("socket")
	if socket == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		socket = cfg.Events.SocketPath
	}
	board, _ := cmd.Flags().GetInt("board")
	count, _ := cmd.Flags().GetInt("count")
	formatter := cli.NewFormatter(cmd)

	client := events.NewClient(socket, zap.NewNop())
	defer func() { _ = client.Close() }()

	if err := client.Connect(ctx); err != nil {
		de := events.ClassifyDaemonError(err)
		_ = formatter.ErrorWithSuggestion(de.Kind.Code(), de.Error(), de.Hint)
		return &cli.ExitCodeError{Code: cli.ExitError, Err: de}
	}
	if board > 0 {
		if err := client.Subscribe(types.BoardID(board)); err != nil {
			return err
		}
	}
	ch, err := client.Listen(ctx)
	if err != nil {
		return err
	}

	return Follow(ctx, ch, formatter, count)
}

// Follow prints envelopes from ch until ctx is done, ch closes or count
// events were printed
func Follow(ctx context.Context, ch <-chan events.Envelope, f *cli.OutputFormatter, count int) error {
	seen := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printEnvelope(f, env); err != nil {
				return err
			}
			seen++
			if count > 0 && seen >= count {
				return nil
			}
		}
	}
}

func printEnvelope(f *cli.OutputFormatter, env events.Envelope) error {
	if f.JSON {
		return json.NewEncoder(f.Out).Encode(env)
	}
	e, err := env.Event()
	if err != nil {
		// Unknown types come from newer producers; skip them
		return nil
	}
	return writeLine(f.Out, env.Timestamp, events.Describe(e))
}

func writeLine(w io.Writer, ts time.Time, line string) error {
	_, err := fmt.Fprintf(w, "%s %s\n", ts.Local().Format(time.TimeOnly), line)
	return err
}
