package daemon

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/events"
)

// Subscriber is the part of a redis client the bridge needs
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RunRedisBridge rebroadcasts every envelope published on channel to the
// server's socket clients. It returns when ctx is done.
func RunRedisBridge(ctx context.Context, rdb Subscriber, channel string, s *Server) error {
	sub := rdb.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()

	// Wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info("redis bridge subscribed", zap.String("channel", channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.bridgeMessage([]byte(msg.Payload))
		}
	}
}

// bridgeMessage validates one payload and broadcasts it
func (s *Server) bridgeMessage(payload []byte) {
	env, _, err := events.Decode(payload)
	if err != nil {
		s.logger.Warn("dropping malformed bridge message", zap.Error(err))
		return
	}
	s.metrics.IncBridgeReceived()
	if err := s.Broadcast(env); err != nil {
		s.metrics.IncEventsDropped()
		s.logger.Warn("bridge broadcast failed", zap.Error(err))
	}
}
