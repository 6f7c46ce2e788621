package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/thenoetrevino/tablero/internal/daemon"
	"github.com/thenoetrevino/tablero/internal/events"
)

// SetupTestDaemon starts a daemon on a temporary socket. It is shut down
// when the test ends.
func SetupTestDaemon(t *testing.T) (*daemon.Server, string) {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "test-tablero.sock")
	server, err := daemon.NewServer(socketPath, daemon.Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test daemon: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(ctx); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(10 * time.Millisecond)
	return server, socketPath
}

// WaitForEnvelope waits for an envelope on ch or fails the test
func WaitForEnvelope(t *testing.T, ch <-chan events.Envelope, timeout time.Duration) events.Envelope {
	t.Helper()

	select {
	case env, ok := <-ch:
		if !ok {
			t.Fatal("Envelope channel closed unexpectedly")
		}
		return env
	case <-time.After(timeout):
		t.Fatalf("Timeout waiting for envelope after %v", timeout)
		return events.Envelope{}
	}
}
