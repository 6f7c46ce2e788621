package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/events"
	"github.com/thenoetrevino/tablero/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ============================================================================
// TEST HELPERS
// ============================================================================

func getTestSocketPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-tablero.sock")
}

func newTestServer(t *testing.T, socketPath string) *Server {
	t.Helper()
	server, err := NewServer(socketPath, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}
	return server
}

func setupTestDaemon(t *testing.T) (*Server, string) {
	t.Helper()
	socketPath := getTestSocketPath(t)
	server := newTestServer(t, socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	// The listener exists once NewServer returns; give Start a moment
	time.Sleep(10 * time.Millisecond)
	return server, socketPath
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()

	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func sendSubscribeMessage(t *testing.T, encoder *json.Encoder, board types.BoardID) {
	t.Helper()
	msg := events.Message{
		Version:   events.ProtocolVersion,
		Type:      events.MessageSubscribe,
		Subscribe: &events.SubscribeMessage{BoardID: board},
	}
	if err := encoder.Encode(msg); err != nil {
		t.Fatalf("Failed to send subscribe: %v", err)
	}
}

func setupTestClient(t *testing.T, socketPath string, board types.BoardID) <-chan events.Envelope {
	t.Helper()
	client := events.NewClient(socketPath, zap.NewNop())
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	if err := client.Subscribe(board); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	listenCtx, stop := context.WithCancel(context.Background())
	t.Cleanup(stop)
	ch, err := client.Listen(listenCtx)
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	return ch
}

func waitForEnvelope(t *testing.T, ch <-chan events.Envelope, timeout time.Duration) events.Envelope {
	t.Helper()
	select {
	case env, ok := <-ch:
		if !ok {
			t.Fatal("Channel closed")
		}
		return env
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for envelope")
		return events.Envelope{}
	}
}

func waitForNoEnvelope(t *testing.T, ch <-chan events.Envelope, timeout time.Duration) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("Unexpected envelope: %+v", env)
	case <-time.After(timeout):
	}
}

func waitForClients(t *testing.T, server *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if server.getClientCount() == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients, got %d", n, server.getClientCount())
}

func mustWrap(t *testing.T, e events.Event) events.Envelope {
	t.Helper()
	env, err := events.Wrap(e)
	if err != nil {
		t.Fatalf("Wrap failed: %v", err)
	}
	return env
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

func TestNewServer_CreatesSocketAndDirectories(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nested", "dir", "tablero.sock")
	server := newTestServer(t, socketPath)
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(socketPath); err != nil {
		t.Errorf("Expected socket file to be created, got %v", err)
	}
	info, err := os.Stat(filepath.Dir(socketPath))
	if err != nil {
		t.Fatalf("Expected socket directory, got %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("Expected directory mode 0700, got %o", perm)
	}
}

func TestNewServer_StaleSocketCleanup(t *testing.T) {
	socketPath := getTestSocketPath(t)
	if err := os.WriteFile(socketPath, nil, 0o600); err != nil {
		t.Fatalf("Failed to create stale socket file: %v", err)
	}

	server := newTestServer(t, socketPath)
	defer func() { _ = server.Shutdown() }()

	if _, err := os.Stat(socketPath); err != nil {
		t.Errorf("Expected new socket file, got %v", err)
	}
}

func TestShutdown_RemovesSocketAndIsIdempotent(t *testing.T) {
	socketPath := getTestSocketPath(t)
	server := newTestServer(t, socketPath)

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := server.Shutdown(); err != nil {
		t.Fatalf("Second Shutdown failed: %v", err)
	}
	if _, err := os.Stat(socketPath); !os.IsNotExist(err) {
		t.Errorf("Expected socket file removed, got %v", err)
	}
	if err := server.Broadcast(events.Envelope{}); err == nil {
		t.Error("Expected Broadcast after shutdown to fail")
	}
}

func TestClientConnectAndDisconnect(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, encoder, _ := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, 0)
	waitForClients(t, server, 1)

	if got := server.Metrics().GetSnapshot().ConnectedClients; got != 1 {
		t.Errorf("Expected 1 connected client in metrics, got %d", got)
	}

	_ = conn.Close()
	waitForClients(t, server, 0)
}

// ============================================================================
// BROADCAST
// ============================================================================

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	boardOne := setupTestClient(t, socketPath, 1)
	boardTwo := setupTestClient(t, socketPath, 2)
	all := setupTestClient(t, socketPath, 0)
	waitForClients(t, server, 3)
	time.Sleep(50 * time.Millisecond) // let subscriptions land

	env := mustWrap(t, events.CardDeleted{BoardID: 1, ColumnID: 2, CardID: 3})
	if err := server.Broadcast(env); err != nil {
		t.Fatalf("Broadcast failed: %v", err)
	}

	got := waitForEnvelope(t, boardOne, 2*time.Second)
	if got.ID != env.ID {
		t.Errorf("Expected envelope %s, got %s", env.ID, got.ID)
	}
	if got.SequenceID == 0 {
		t.Error("Expected sequence id to be stamped")
	}
	waitForEnvelope(t, all, 2*time.Second)
	waitForNoEnvelope(t, boardTwo, 100*time.Millisecond)
}

func TestBroadcast_SequenceNumbersIncrease(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	ch := setupTestClient(t, socketPath, 0)
	waitForClients(t, server, 1)
	time.Sleep(50 * time.Millisecond)

	var last int64
	for i := 0; i < 5; i++ {
		if err := server.Publish(context.Background(), events.BoardDeleted{BoardID: types.BoardID(i + 1)}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		env := waitForEnvelope(t, ch, 2*time.Second)
		if env.SequenceID <= last {
			t.Errorf("Expected increasing sequence ids, got %d after %d", env.SequenceID, last)
		}
		last = env.SequenceID
	}
}

func TestBroadcast_ClientPublishReachesOthers(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	listener := setupTestClient(t, socketPath, 7)

	_, encoder, _ := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, 0)
	waitForClients(t, server, 2)
	time.Sleep(50 * time.Millisecond)

	env := mustWrap(t, events.ColumnRenamed{BoardID: 7, ColumnID: 1, Name: "Done"})
	if err := encoder.Encode(events.Message{Version: events.ProtocolVersion, Type: events.MessageEvent, Envelope: &env}); err != nil {
		t.Fatalf("Failed to send event: %v", err)
	}

	got := waitForEnvelope(t, listener, 2*time.Second)
	e, err := got.Event()
	if err != nil {
		t.Fatalf("Failed to decode event: %v", err)
	}
	if renamed, ok := e.(events.ColumnRenamed); !ok || renamed.Name != "Done" {
		t.Errorf("Expected ColumnRenamed to Done, got %#v", e)
	}
	if got := server.Metrics().GetSnapshot().EventsReceived; got != 1 {
		t.Errorf("Expected 1 received event, got %d", got)
	}
}

func TestBroadcast_RejectsUnknownEventType(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	listener := setupTestClient(t, socketPath, 0)

	_, encoder, _ := connectRawClient(t, socketPath)
	waitForClients(t, server, 2)
	time.Sleep(50 * time.Millisecond)

	bogus := events.Envelope{Type: "board.exploded", BoardID: 1, Payload: json.RawMessage(`{}`)}
	if err := encoder.Encode(events.Message{Type: events.MessageEvent, Envelope: &bogus}); err != nil {
		t.Fatalf("Failed to send event: %v", err)
	}

	waitForNoEnvelope(t, listener, 100*time.Millisecond)
}

// ============================================================================
// HEALTH
// ============================================================================

func TestRemoveStaleClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	_, encoder, _ := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, 0)
	waitForClients(t, server, 1)

	if n := server.removeStaleClients(time.Now()); n != 0 {
		t.Errorf("Expected no stale clients yet, got %d", n)
	}
	if n := server.removeStaleClients(time.Now().Add(2 * staleAfter)); n != 1 {
		t.Errorf("Expected 1 stale client, got %d", n)
	}
	waitForClients(t, server, 0)
}

func TestPingClients(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, encoder, decoder := connectRawClient(t, socketPath)
	sendSubscribeMessage(t, encoder, 0)
	waitForClients(t, server, 1)

	server.pingClients()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg events.Message
	if err := decoder.Decode(&msg); err != nil {
		t.Fatalf("Failed to read ping: %v", err)
	}
	if msg.Type != events.MessagePing {
		t.Errorf("Expected ping, got %s", msg.Type)
	}
}

// ============================================================================
// REDIS BRIDGE
// ============================================================================

func TestBridgeMessage(t *testing.T) {
	server, socketPath := setupTestDaemon(t)
	ch := setupTestClient(t, socketPath, 4)
	waitForClients(t, server, 1)
	time.Sleep(50 * time.Millisecond)

	server.bridgeMessage([]byte("garbage"))

	data, err := events.Encode(events.CardsReordered{BoardID: 4, ColumnID: 1, Order: []types.CardID{2, 1}, Version: 3})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	server.bridgeMessage(data)

	env := waitForEnvelope(t, ch, 2*time.Second)
	if env.Type != events.TypeCardsReordered {
		t.Errorf("Expected cards.reordered, got %s", env.Type)
	}
	if got := server.Metrics().GetSnapshot().BridgeReceived; got != 1 {
		t.Errorf("Expected 1 bridged envelope, got %d", got)
	}
}
