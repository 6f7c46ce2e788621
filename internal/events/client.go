package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/types"
)

var errNotConnected = errors.New("not connected to daemon")

// Client is a connection to the tablero daemon. It publishes envelopes
// through a bounded queue and receives the envelopes of the board it
// subscribes to, reconnecting with backoff when the socket drops.
type Client struct {
	socketPath string
	logger     *zap.Logger
	conn       net.Conn
	encoder    *json.Encoder
	decoder    *json.Decoder
	mu         sync.Mutex

	queue  chan Envelope
	closed bool // Prevent double-close panics

	// Reconnection configuration
	maxRetries int
	baseDelay  time.Duration

	// Subscription state, replayed on reconnect
	boardID types.BoardID

	// Event tracking
	lastSequence int64

	ctx        context.Context
	cancel     context.CancelFunc
	writerDone chan struct{}
}

// NewClient creates a client for the daemon listening on socketPath. It
// does not connect.
func NewClient(socketPath string, logger *zap.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		socketPath: socketPath,
		logger:     logger,
		queue:      make(chan Envelope, 100),
		maxRetries: 5,
		baseDelay:  1 * time.Second,
		ctx:        ctx,
		cancel:     cancel,
		writerDone: make(chan struct{}),
	}
	go c.writer()
	return c
}

// Connect dials the daemon socket and sends the current subscription
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to dial daemon socket: %w", err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	msg := Message{
		Version:   ProtocolVersion,
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{BoardID: c.boardID},
	}
	if err := c.encoder.Encode(msg); err != nil {
		_ = conn.Close()
		c.conn = nil
		return fmt.Errorf("failed to send subscription: %w", err)
	}

	return nil
}

// Publish wraps e and queues it for the daemon. It never blocks; a full
// queue returns ErrQueueFull.
func (c *Client) Publish(_ context.Context, e Event) error {
	env, err := Wrap(e)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errNotConnected
	}
	select {
	case c.queue <- env:
		return nil
	default:
		return ErrQueueFull
	}
}

// writer forwards queued envelopes until the queue is closed
func (c *Client) writer() {
	defer close(c.writerDone)

	for env := range c.queue {
		if err := c.send(eventMessage(env)); err != nil {
			if errors.Is(err, errNotConnected) || isConnectionError(err) {
				c.logger.Debug("event not delivered to daemon", zap.Error(err))
				continue
			}
			c.logger.Warn("failed to send event", zap.String("event_type", string(env.Type)), zap.Error(err))
		}
	}
}

// send writes one message to the socket
func (c *Client) send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return errNotConnected
	}

	// A short write deadline detects dead connections
	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	return c.encoder.Encode(msg)
}

// Listen returns a channel of envelopes for the subscribed board. The
// channel is closed when ctx is done or reconnection gives up.
func (c *Client) Listen(ctx context.Context) (<-chan Envelope, error) {
	c.mu.Lock()
	connected := c.conn != nil
	c.mu.Unlock()
	if !connected {
		return nil, errNotConnected
	}

	out := make(chan Envelope, 10)
	go c.listenLoop(ctx, out)
	return out, nil
}

func (c *Client) listenLoop(ctx context.Context, out chan Envelope) {
	defer close(out)

	for {
		err := c.readEvents(ctx, out)
		if ctx.Err() != nil || c.ctx.Err() != nil {
			return
		}
		c.logger.Info("connection to daemon lost, reconnecting", zap.Error(err))

		if !c.reconnect(ctx) {
			c.logger.Warn("giving up on daemon", zap.Int("attempts", c.maxRetries))
			return
		}
	}
}

// readEvents decodes messages until the connection fails
func (c *Client) readEvents(ctx context.Context, out chan Envelope) error {
	for {
		c.mu.Lock()
		if c.conn == nil {
			c.mu.Unlock()
			return errNotConnected
		}
		// Daemon pings every 30s; 60s without traffic means a hung peer
		if err := c.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			c.mu.Unlock()
			return fmt.Errorf("failed to set read deadline: %w", err)
		}
		decoder := c.decoder
		c.mu.Unlock()

		var msg Message
		if err := decoder.Decode(&msg); err != nil {
			return fmt.Errorf("failed to decode message: %w", err)
		}

		switch msg.Type {
		case MessageEvent:
			if msg.Envelope == nil {
				continue
			}
			// Sequence ids come from the daemon; drop replays
			if seq := msg.Envelope.SequenceID; seq > 0 {
				if seq <= c.lastSequence {
					continue
				}
				c.lastSequence = seq
			}
			select {
			case out <- *msg.Envelope:
			case <-ctx.Done():
				return ctx.Err()
			}

		case MessagePing:
			if err := c.send(Message{Version: ProtocolVersion, Type: MessagePong}); err != nil && !isConnectionError(err) {
				c.logger.Debug("failed to send pong", zap.Error(err))
			}
		}
	}
}

// isConnectionError checks if an error is a network connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset")
}

// reconnect retries Connect up to maxRetries times, doubling the delay
// each time (1s, 2s, 4s, ...).
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.baseDelay

	for i := 0; i < c.maxRetries; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-c.ctx.Done():
			return false
		case <-time.After(delay):
			c.mu.Lock()
			if c.conn != nil {
				_ = c.conn.Close()
				c.conn = nil
			}
			c.mu.Unlock()

			if err := c.Connect(ctx); err == nil {
				c.logger.Info("reconnected to daemon", zap.Int("attempt", i+1))
				return true
			}
			delay *= 2
		}
	}

	return false
}

// Subscribe switches the subscription to board. 0 follows every board.
func (c *Client) Subscribe(board types.BoardID) error {
	c.mu.Lock()
	c.boardID = board
	c.mu.Unlock()

	return c.send(Message{
		Version:   ProtocolVersion,
		Type:      MessageSubscribe,
		Subscribe: &SubscribeMessage{BoardID: board},
	})
}

// Close flushes queued envelopes, closes the connection and stops every
// goroutine the client started.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.queue)
	c.mu.Unlock()

	// writer drains what is already queued
	<-c.writerDone
	c.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
