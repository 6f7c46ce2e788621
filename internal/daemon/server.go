// Package daemon fans board events out to local subscribers over a unix
// socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/types"
)

const (
	pingInterval  = 30 * time.Second
	healthCheck   = 60 * time.Second
	staleAfter    = 90 * time.Second
	acceptTimeout = 1 * time.Second
)

// client represents a connected subscriber
type client struct {
	conn      net.Conn
	send      chan events.Message
	boardID   types.BoardID // 0 = all boards
	lastPong  time.Time
	mu        sync.Mutex // Protects boardID and lastPong
	closeOnce sync.Once  // Ensures send channel is closed only once
}

func (c *client) follows(board types.BoardID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return board == 0 || c.boardID == 0 || c.boardID == board
}

// Options tunes the server's queues
type Options struct {
	BroadcastBuffer int
	ClientBuffer    int
}

func (o *Options) applyDefaults() {
	if o.BroadcastBuffer <= 0 {
		o.BroadcastBuffer = 100
	}
	if o.ClientBuffer <= 0 {
		o.ClientBuffer = 10
	}
}

// Server is the tablero event daemon
type Server struct {
	socketPath       string
	listener         net.Listener
	logger           *zap.Logger
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan events.Envelope
	metrics          *Metrics
	sequenceCounter  atomic.Int64
	clientBufferSize int
	closed           bool // broadcast is closed; guarded by mu
	shutdownOnce     sync.Once
	wg               sync.WaitGroup
}

// NewServer listens on socketPath, replacing a stale socket file
func NewServer(socketPath string, opts Options, logger *zap.Logger) (*Server, error) {
	opts.applyDefaults()

	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		socketPath:       socketPath,
		listener:         listener,
		logger:           logger,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan events.Envelope, opts.BroadcastBuffer),
		metrics:          NewMetrics(),
		clientBufferSize: opts.ClientBuffer,
	}, nil
}

// Metrics returns the server's live counters
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start runs the accept, broadcast and health loops until ctx is done or
// Shutdown is called, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("daemon starting", zap.String("socket", s.socketPath))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.ctx.Done():
			cancel()
		case <-runCtx.Done():
		}
	}()

	acceptErr := make(chan error, 1)
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		acceptErr <- s.acceptLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.broadcastLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.monitorHealth(runCtx)
	}()

	select {
	case <-runCtx.Done():
		s.logger.Info("daemon context cancelled, shutting down")
	case err := <-acceptErr:
		if err != nil {
			s.logger.Error("accept loop failed", zap.Error(err))
		}
	}

	cancel()
	err := s.Shutdown()
	s.wg.Wait()
	return err
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	ul, _ := s.listener.(*net.UnixListener)
	for {
		if ctx.Err() != nil {
			return nil
		}

		// A deadline lets the loop notice cancellation
		if ul != nil {
			_ = ul.SetDeadline(time.Now().Add(acceptTimeout))
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		if s.ctx.Err() != nil {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		s.logger.Debug("client connected", zap.Int("clients", s.getClientCount()))

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			s.handleClient(c)
		}()
		go func() {
			defer s.wg.Done()
			s.clientWriter(c)
		}()
	}
}

// broadcastLoop stamps sequence ids and distributes envelopes to
// subscribed clients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case env, ok := <-s.broadcast:
			if !ok {
				return
			}
			env.SequenceID = s.sequenceCounter.Add(1)
			s.metrics.IncBroadcasts()

			s.mu.RLock()
			for c := range s.clients {
				if !c.follows(env.BoardID) {
					continue
				}
				msg := events.Message{
					Version:  events.ProtocolVersion,
					Type:     events.MessageEvent,
					Envelope: &env,
				}
				// Slow clients miss events rather than stall the others
				if !s.sendToClient(c, msg) {
					s.metrics.IncEventsDropped()
					s.logger.Debug("client send queue full, event dropped",
						zap.Int64("sequence", env.SequenceID))
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		s.logger.Debug("client disconnected", zap.Int("clients", s.getClientCount()))
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.logger.Warn("protocol version mismatch",
				zap.Int("got", msg.Version),
				zap.Int("want", events.ProtocolVersion))
		}

		switch msg.Type {
		case events.MessageEvent:
			if msg.Envelope == nil {
				continue
			}
			if _, err := msg.Envelope.Event(); err != nil {
				s.logger.Warn("rejected event from client", zap.Error(err))
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Envelope); err != nil {
				s.metrics.IncEventsDropped()
				s.logger.Warn("broadcast channel full")
			}

		case events.MessageSubscribe:
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.boardID = msg.Subscribe.BoardID
				c.mu.Unlock()
				s.logger.Debug("client subscribed", zap.Int("board_id", msg.Subscribe.BoardID.ToInt()))
			}

		case events.MessagePong:
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends queued messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			// Keep draining so closeOnce callers never block
			continue
		}
		s.metrics.IncEventsSent()
	}
}

// monitorHealth pings clients and removes those that stopped answering
func (s *Server) monitorHealth(ctx context.Context) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	healthTicker := time.NewTicker(healthCheck)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-pingTicker.C:
			s.pingClients()

		case <-healthTicker.C:
			s.removeStaleClients(time.Now())
		}
	}
}

// pingClients queues a ping for every client
func (s *Server) pingClients() {
	ping := events.Message{Version: events.ProtocolVersion, Type: events.MessagePing}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if !s.sendToClient(c, ping) {
			s.logger.Debug("failed to queue ping")
		}
	}
}

// removeStaleClients drops clients whose last pong is older than
// staleAfter. Clients are collected under the read lock and removed after
// it is released.
func (s *Server) removeStaleClients(now time.Time) int {
	var stale []*client
	for _, c := range s.snapshotClients() {
		c.mu.Lock()
		lastPong := c.lastPong
		c.mu.Unlock()

		if now.Sub(lastPong) > staleAfter {
			stale = append(stale, c)
		}
	}

	for _, c := range stale {
		s.logger.Info("removing stale client")
		s.removeClient(c)
	}
	return len(stale)
}

func (s *Server) snapshotClients() []*client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	return clients
}

// Broadcast queues env for every subscribed client without blocking
func (s *Server) Broadcast(env events.Envelope) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("daemon shut down")
	}
	select {
	case s.broadcast <- env:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Publish lets an in-process producer broadcast an event directly
func (s *Server) Publish(_ context.Context, e events.Event) error {
	env, err := events.Wrap(e)
	if err != nil {
		return err
	}
	return s.Broadcast(env)
}

var _ events.Publisher = (*Server)(nil)

// Shutdown closes the listener and every client and removes the socket
func (s *Server) Shutdown() error {
	s.shutdownOnce.Do(func() {
		s.logger.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn("error closing listener", zap.Error(err))
			}
		}

		for _, c := range s.snapshotClients() {
			s.removeClient(c)
		}

		if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove socket file", zap.Error(err))
		}

		s.mu.Lock()
		s.closed = true
		close(s.broadcast)
		s.mu.Unlock()
	})

	return nil
}

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	_ = c.conn.Close()
	c.closeOnce.Do(func() {
		close(c.send)
	})

	s.updateClientCount()
}

// sendToClient queues msg for c. It returns false when the queue is full.
// Callers hold s.mu so removeClient cannot close c.send concurrently.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
