package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tablero/internal/cli"
	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/testutil"
	"github.com/thenoetrevino/tablero/internal/types"
)

func envelopes(t *testing.T, evs ...events.Event) chan events.Envelope {
	t.Helper()
	ch := make(chan events.Envelope, len(evs)+1)
	for _, e := range evs {
		env, err := events.Wrap(e)
		require.NoError(t, err)
		ch <- env
	}
	return ch
}

func TestFollow_Lines(t *testing.T) {
	t.Parallel()
	ch := envelopes(t,
		events.ColumnRenamed{BoardID: 3, ColumnID: 7, Name: "Done"},
		events.CardsReordered{BoardID: 3, ColumnID: 7, Order: []types.CardID{2, 1}, Version: 4},
	)
	close(ch)

	var out bytes.Buffer
	err := Follow(context.Background(), ch, &cli.OutputFormatter{Out: &out}, 0)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `column 7 renamed to "Done"`)
	assert.Contains(t, lines[1], "board 3")
}

func TestFollow_SkipsUnknownTypes(t *testing.T) {
	t.Parallel()
	ch := make(chan events.Envelope, 2)
	ch <- events.Envelope{Type: "card.archived", BoardID: 3, Payload: json.RawMessage(`{}`)}
	close(ch)

	var out bytes.Buffer
	require.NoError(t, Follow(context.Background(), ch, &cli.OutputFormatter{Out: &out}, 0))
	if out.Len() != 0 {
		t.Errorf("Expected no output, got %q", out.String())
	}
}

func TestFollow_JSONAndCount(t *testing.T) {
	t.Parallel()
	ch := envelopes(t,
		events.BoardCreated{BoardID: 1, OrgID: 1, Name: "A"},
		events.BoardCreated{BoardID: 2, OrgID: 1, Name: "B"},
	)

	var out bytes.Buffer
	err := Follow(context.Background(), ch, &cli.OutputFormatter{JSON: true, Out: &out}, 1)
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal(out.Bytes(), &env))
	assert.Equal(t, events.TypeBoardCreated, env.Type)
	assert.Equal(t, types.BoardID(1), env.BoardID)
	assert.Len(t, ch, 1)
}

func TestFollow_StopsOnCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := Follow(ctx, make(chan events.Envelope), &cli.OutputFormatter{Out: &out}, 0)
	assert.NoError(t, err)
}

func TestWatch_DaemonUnavailable(t *testing.T) {
	t.Parallel()
	root := WatchCmd()
	cli.AddOutputFlags(root)

	socket := filepath.Join(t.TempDir(), "missing.sock")
	out, err := testutil.ExecuteCommand(t, root, "--socket", socket, "--json")
	assert.Equal(t, cli.ExitError, cli.ExitCodeFor(err))
	assert.Contains(t, out, "DAEMON_SOCKET_MISSING")
}
