// Package apperr classifies errors returned by the services so the HTTP API
// and the CLI report them the same way.
package apperr

import (
	"errors"
	"net/http"

	"github.com/thenoetrevino/tablero/internal/models"
	"github.com/thenoetrevino/tablero/internal/services/board"
	"github.com/thenoetrevino/tablero/internal/services/card"
	"github.com/thenoetrevino/tablero/internal/services/column"
	"github.com/thenoetrevino/tablero/internal/services/label"
	"github.com/thenoetrevino/tablero/internal/services/org"
)

// Kind is a caller-facing error category
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindForbidden
	KindQuotaExceeded
	KindInvalidOrderSet
	KindScopeViolation
	KindConflict
)

// RefreshHint is shown for errors caused by acting on an outdated board
const RefreshHint = "the board changed, refresh and try again"

var validationErrors = []error{
	board.ErrEmptyName, board.ErrNameTooLong, board.ErrInvalidBoardID, board.ErrInvalidOrgID,
	column.ErrEmptyName, column.ErrNameTooLong, column.ErrInvalidColumnID, column.ErrInvalidBoardID,
	column.ErrInvalidIndex,
	card.ErrEmptyTitle, card.ErrTitleTooLong, card.ErrDescriptionTooBig, card.ErrInvalidCardID,
	card.ErrInvalidColumnID, card.ErrInvalidBoardID, card.ErrInvalidIndex,
	card.ErrEmptyBatch, card.ErrNothingToUpdate,
	label.ErrEmptyName, label.ErrNameTooLong, label.ErrInvalidColor, label.ErrInvalidLabelID,
	label.ErrInvalidBoardID, label.ErrInvalidCardID,
	org.ErrEmptyName, org.ErrNameTooLong, org.ErrInvalidOrgID, org.ErrInvalidUserID,
	org.ErrInvalidRole, org.ErrInvalidResource,
}

var conflictErrors = []error{
	models.ErrConflict, board.ErrBoardNotEmpty, org.ErrLastOwner, label.ErrDuplicateName,
}

// Classify maps err onto a Kind. Unknown errors are internal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, models.ErrNotFound):
		return KindNotFound
	case errors.Is(err, models.ErrForbidden):
		return KindForbidden
	case errors.Is(err, models.ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, models.ErrInvalidOrderSet):
		return KindInvalidOrderSet
	case errors.Is(err, models.ErrScopeViolation):
		return KindScopeViolation
	case errors.Is(err, org.ErrNoActor):
		return KindUnauthenticated
	case isAny(err, conflictErrors):
		return KindConflict
	case isAny(err, validationErrors):
		return KindValidation
	}
	return KindInternal
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// Code is the stable machine-readable name of a Kind
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_FAILED"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindQuotaExceeded:
		return "QUOTA_EXCEEDED"
	case KindInvalidOrderSet:
		return "INVALID_ORDER_SET"
	case KindScopeViolation:
		return "SCOPE_VIOLATION"
	case KindConflict:
		return "CONFLICT"
	}
	return "INTERNAL"
}

// Status is the HTTP status of a Kind
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindQuotaExceeded:
		return http.StatusPaymentRequired
	case KindInvalidOrderSet, KindScopeViolation, KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Hint suggests what the caller can do about an error of this Kind
func (k Kind) Hint() string {
	switch k {
	case KindInvalidOrderSet, KindScopeViolation:
		return RefreshHint
	case KindConflict:
		return "someone else changed this first, reload and retry"
	case KindQuotaExceeded:
		return "upgrade the organization's plan or delete unused items"
	case KindForbidden:
		return "ask an organization admin for access"
	}
	return ""
}

// Message is what a caller sees. Stale-view errors share one generic
// message; internal errors never leak details.
func Message(err error) string {
	switch k := Classify(err); k {
	case KindInvalidOrderSet, KindScopeViolation:
		return RefreshHint
	case KindInternal:
		return "internal error"
	}
	return err.Error()
}
