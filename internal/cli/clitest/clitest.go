// Package clitest runs CLI commands against a seeded fixture store
package clitest

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tablero/internal/app"
	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/testutil"
	"github.com/thenoetrevino/tablero/internal/types"
)

// Env is a fixture whose store backs every command it runs
type Env struct {
	*testutil.Fixture
	Config *config.Config
	Events *events.Recorder
}

// New seeds a fixture. Commands run through the returned Env never touch
// the user's config, database or daemon.
func New(t *testing.T) *Env {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "unused.db")
	cfg.Events.Mode = config.EventsNone
	return &Env{Fixture: testutil.NewFixture(t), Config: cfg, Events: &events.Recorder{}}
}

// Open is the cli.Opener for the fixture store
func (e *Env) Open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, e.Config, app.WithStore(e.Store), app.WithEventPublisher(e.Events))
}

// Run builds a fresh command with newCmd, mounts it under a root carrying
// the global flags and executes it as user
func (e *Env) Run(t *testing.T, newCmd func(cli.Opener) *cobra.Command, user types.UserID, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "tablero"}
	cli.AddOutputFlags(root)
	sub := newCmd(e.Open)
	root.AddCommand(sub)

	argv := append([]string{sub.Name()}, args...)
	argv = append(argv, "--as", string(user))
	return testutil.ExecuteCommand(t, root, argv...)
}

// Result is the JSON envelope every command prints with --json
type Result struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		Suggestion string `json:"suggestion"`
	} `json:"error"`
}

// Decode parses --json output, and the data payload into v when v is not nil
func Decode(t *testing.T, output string, v any) Result {
	t.Helper()
	var r Result
	if err := json.Unmarshal([]byte(output), &r); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if v != nil && r.Success {
		if err := json.Unmarshal(r.Data, v); err != nil {
			t.Fatalf("Failed to parse data: %v\nData: %s", err, r.Data)
		}
	}
	return r
}
