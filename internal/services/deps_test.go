package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thenoetrevino/tablero/internal/events"
)

type fullQueue struct{}

func (fullQueue) Publish(context.Context, events.Event) error { return events.ErrQueueFull }

func TestPublish_LogsRejectedEventOnce(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.WarnLevel)
	d := Deps{Events: fullQueue{}, Logger: zap.New(core)}

	d.Publish(context.Background(), events.BoardDeleted{BoardID: 7})

	require.Equal(t, 1, logs.Len(), "Expected one warning per rejected event")
	entry := logs.All()[0]
	assert.Equal(t, "failed to publish event", entry.Message)
	assert.Equal(t, int64(7), entry.ContextMap()["board_id"])
	assert.Equal(t, events.ErrQueueFull.Error(), entry.ContextMap()["error"])
}

func TestPublish_DeliveredEventIsQuiet(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zap.WarnLevel)
	rec := &events.Recorder{}
	d := Deps{Events: rec, Logger: zap.New(core)}

	d.Publish(context.Background(), events.BoardDeleted{BoardID: 7})

	assert.Zero(t, logs.Len())
	assert.Equal(t, []events.Type{events.TypeBoardDeleted}, rec.Types())
}
