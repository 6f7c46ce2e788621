package events

import (
	"errors"
	"os"
	"syscall"
)

// DaemonErrorKind says why the realtime daemon could not be reached
type DaemonErrorKind int

const (
	DaemonNotRunning DaemonErrorKind = iota
	DaemonSocketMissing
	DaemonSocketPermission
	DaemonRefused
)

// Code is the stable name printed by the CLI
func (k DaemonErrorKind) Code() string {
	switch k {
	case DaemonSocketMissing:
		return "DAEMON_SOCKET_MISSING"
	case DaemonSocketPermission:
		return "DAEMON_SOCKET_PERMISSION"
	case DaemonRefused:
		return "DAEMON_REFUSED"
	}
	return "DAEMON_UNAVAILABLE"
}

// DaemonError wraps a dial failure with a hint for the user
type DaemonError struct {
	Kind DaemonErrorKind
	Hint string
	Err  error
}

func (e *DaemonError) Error() string { return e.Err.Error() }

func (e *DaemonError) Unwrap() error { return e.Err }

// ClassifyDaemonError maps a Connect error onto a DaemonError. It returns
// nil for a nil error.
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}
	var de *DaemonError
	if errors.As(err, &de) {
		return de
	}

	switch {
	case os.IsNotExist(err) || errors.Is(err, syscall.ENOENT):
		return &DaemonError{Kind: DaemonSocketMissing, Hint: "start it with: tablero-daemon", Err: err}
	case os.IsPermission(err) || errors.Is(err, syscall.EACCES):
		return &DaemonError{Kind: DaemonSocketPermission, Hint: "check the permissions of the socket directory", Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &DaemonError{Kind: DaemonRefused, Hint: "the daemon may have crashed, restart it with: tablero-daemon", Err: err}
	}
	return &DaemonError{Kind: DaemonNotRunning, Hint: "start it with: tablero-daemon", Err: err}
}
