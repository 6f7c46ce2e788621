package models

import "errors"

// Domain errors shared by every service. Callers wrap them with %w and test
// them with errors.Is.
var (
	// ErrNotFound indicates a missing organization, board, column, card or label
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates the actor is not a member or ranks too low
	ErrForbidden = errors.New("forbidden")

	// ErrQuotaExceeded indicates the organization's plan limit was reached
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrInvalidOrderSet indicates a submitted order that does not match the
	// container's current items, or a batch that leaves a container with gaps
	ErrInvalidOrderSet = errors.New("order does not match current items")

	// ErrScopeViolation indicates an operation spanning more than one board
	ErrScopeViolation = errors.New("items belong to different boards")

	// ErrConflict indicates a concurrent modification
	ErrConflict = errors.New("concurrent modification")
)

// IsStale reports whether err means the caller acted on an outdated view and
// should refresh before retrying.
func IsStale(err error) bool {
	return errors.Is(err, ErrInvalidOrderSet) ||
		errors.Is(err, ErrScopeViolation) ||
		errors.Is(err, ErrConflict)
}
