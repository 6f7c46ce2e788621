package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/config"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/limits"
	cardservice "github.com/thenoetrevino/tablero/internal/services/card"
	columnservice "github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "tablero.db")
	cfg.Events.Mode = config.EventsNone
	return cfg
}

func TestNew(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)

	if app.OrgService == nil || app.BoardService == nil || app.ColumnService == nil ||
		app.CardService == nil || app.LabelService == nil {
		t.Fatal("Expected every service to be initialized")
	}
	if app.Billing == nil {
		t.Error("Expected billing syncer to be initialized")
	}
	assert.IsType(t, &limits.MemoryStore{}, app.Rates)
	assert.Equal(t, events.Nop{}, app.Events)
	assert.Nil(t, app.Redis)

	require.NoError(t, app.Close(context.Background()))
	// a second close is a no-op
	require.NoError(t, app.Close(context.Background()))
}

func TestNew_WithStore(t *testing.T) {
	t.Parallel()
	f := testutil.NewFixture(t)
	rec := &events.Recorder{}

	app, err := New(context.Background(), testConfig(t), WithStore(f.Store), WithEventPublisher(rec))
	require.NoError(t, err)
	defer func() { _ = app.Close(context.Background()) }()

	ctx := testutil.As(testutil.Member)
	col, err := app.ColumnService.CreateColumn(ctx, columnservice.CreateColumnRequest{BoardID: f.Board.ID, Name: "Todo"})
	require.NoError(t, err)
	_, err = app.CardService.CreateCard(ctx, cardservice.CreateCardRequest{ColumnID: col.ID, Title: "A"})
	require.NoError(t, err)

	assert.Equal(t, []events.Type{events.TypeColumnCreated, events.TypeCardCreated}, rec.Types())

	// the caller's store stays open
	require.NoError(t, app.Close(context.Background()))
	_, err = f.Store.GetBoard(context.Background(), f.Board.ID)
	assert.NoError(t, err)
}

func TestNew_SocketWithoutDaemon(t *testing.T) {
	t.Parallel()
	cfg := testConfig(t)
	cfg.Events.Mode = config.EventsSocket
	cfg.Events.SocketPath = filepath.Join(t.TempDir(), "missing.sock")

	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = app.Close(context.Background()) }()

	assert.Equal(t, events.Nop{}, app.Events)
}

func TestNew_SocketDeliversToDaemon(t *testing.T) {
	t.Parallel()
	_, socketPath := testutil.SetupTestDaemon(t)

	listener := events.NewClient(socketPath, zap.NewNop())
	require.NoError(t, listener.Connect(context.Background()))
	defer func() { _ = listener.Close() }()
	ch, err := listener.Listen(context.Background())
	require.NoError(t, err)

	f := testutil.NewFixture(t)
	cfg := testConfig(t)
	cfg.Events.Mode = config.EventsSocket
	cfg.Events.SocketPath = socketPath

	app, err := New(context.Background(), cfg, WithStore(f.Store))
	require.NoError(t, err)
	assert.IsType(t, &events.Dispatcher{}, app.Events)

	_, err = app.ColumnService.CreateColumn(testutil.As(testutil.Member),
		columnservice.CreateColumnRequest{BoardID: f.Board.ID, Name: "Todo"})
	require.NoError(t, err)

	env := testutil.WaitForEnvelope(t, ch, 2*time.Second)
	assert.Equal(t, events.TypeColumnCreated, env.Type)
	assert.Equal(t, f.Board.ID, env.BoardID)

	require.NoError(t, app.Close(context.Background()))
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		tweak func(*config.Config)
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "oracle" }},
		{"unknown events mode", func(c *config.Config) { c.Events.Mode = "carrier-pigeon" }},
		{"unknown rate backend", func(c *config.Config) { c.RateLimit.Backend = "memcached" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testConfig(t)
			tt.tweak(cfg)

			app, err := New(context.Background(), cfg)
			if err == nil {
				t.Errorf("Expected error, got app %+v", app)
			}
		})
	}
}
