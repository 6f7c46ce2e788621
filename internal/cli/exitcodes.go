package cli

import (
	"errors"

	"github.com/thenoetrevino/tablero/internal/apperr"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, network errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or when the user needs to provide different arguments.
	ExitUsage = 2

	// ExitNotFound indicates a requested organization, board, column,
	// card or label does not exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Malformed --move specs or unparsable ID lists.
	ExitDataErr = 4

	// ExitValidation indicates input failed a service's validation rules.
	ExitValidation = 5

	// ExitForbidden indicates the acting user lacks the required role.
	ExitForbidden = 6

	// ExitQuota indicates the organization's plan limit was reached.
	ExitQuota = 7

	// ExitStale indicates the board changed under the command: a stale
	// order set, a cross-board move or a version conflict. Refresh and retry.
	ExitStale = 8
)

// ExitCodeError carries the exit code for an error that was already reported
// to the user
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string { return e.Err.Error() }

func (e *ExitCodeError) Unwrap() error { return e.Err }

// ExitCodeFor maps err to the process exit code
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exit *ExitCodeError
	if errors.As(err, &exit) {
		return exit.Code
	}

	switch apperr.Classify(err) {
	case apperr.KindNotFound:
		return ExitNotFound
	case apperr.KindValidation:
		return ExitValidation
	case apperr.KindForbidden, apperr.KindUnauthenticated:
		return ExitForbidden
	case apperr.KindQuotaExceeded:
		return ExitQuota
	case apperr.KindInvalidOrderSet, apperr.KindScopeViolation, apperr.KindConflict:
		return ExitStale
	}
	return ExitError
}
