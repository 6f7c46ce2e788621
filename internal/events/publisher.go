package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher delivers committed board changes to realtime subscribers.
// Delivery is best effort: callers log failures and move on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// RedisPublisher publishes envelopes on a Redis channel, for API instances
// that do not share a host with the daemon.
type RedisPublisher struct {
	client  redis.Cmdable
	channel string
}

// NewRedisPublisher creates a publisher for channel
func NewRedisPublisher(client redis.Cmdable, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", e.Type(), p.channel, err)
	}
	return nil
}

// ErrQueueFull is returned when the dispatcher cannot accept another event
var ErrQueueFull = errors.New("event queue full")

// ErrDispatcherClosed is returned after Close
var ErrDispatcherClosed = errors.New("event dispatcher closed")

// Dispatcher decouples publishing from the caller. Publish only enqueues;
// a single worker forwards events to the downstream publisher, retrying
// a few times before logging and dropping the event.
type Dispatcher struct {
	next       Publisher
	logger     *zap.Logger
	queue      chan Event
	maxRetries int
	baseDelay  time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewDispatcher starts a dispatcher with a queue of size entries
func NewDispatcher(next Publisher, size int, logger *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	d := &Dispatcher{
		next:       next,
		logger:     logger,
		queue:      make(chan Event, size),
		maxRetries: 3,
		baseDelay:  50 * time.Millisecond,
		done:       make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish enqueues e without blocking. A full queue is reported to the
// caller, which owns logging it.
func (d *Dispatcher) Publish(_ context.Context, e Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for e := range d.queue {
		_ = d.publishWithRetry(e)
	}
}

// publishWithRetry makes up to maxRetries attempts with exponential backoff
// (50ms, 100ms, ...). The last error is logged and returned.
func (d *Dispatcher) publishWithRetry(e Event) error {
	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := d.next.Publish(ctx, e)
		cancel()
		if err == nil {
			if attempt > 0 {
				d.logger.Debug("event published after retry",
					zap.Int("attempt", attempt+1),
					zap.String("event_type", string(e.Type())))
			}
			return nil
		}
		lastErr = err

		if attempt < d.maxRetries-1 {
			delay := d.baseDelay * (1 << attempt)
			d.logger.Debug("event publish failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("retry_delay", delay),
				zap.Error(err))
			time.Sleep(delay)
		}
	}

	d.logger.Warn("event publish failed after all retries",
		zap.Int("attempts", d.maxRetries),
		zap.String("event_type", string(e.Type())),
		zap.Int("board_id", e.Board().ToInt()),
		zap.Error(lastErr))
	return lastErr
}

// Close stops accepting events, drains the queue and waits for the worker.
// ctx bounds the wait.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Multi publishes to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder keeps every published event. It is safe for concurrent use and
// intended for tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what was published so far
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the types of published events in order
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*RedisPublisher)(nil)
	_ Publisher = (*Dispatcher)(nil)
	_ Publisher = Multi(nil)
	_ Publisher = (*Recorder)(nil)
	_ Publisher = (*Client)(nil)
)

// eventMessage wraps env for the socket
func eventMessage(env Envelope) Message {
	return Message{Version: ProtocolVersion, Type: MessageEvent, Envelope: &env}
}
