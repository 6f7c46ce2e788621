package board

import "errors"

// Domain errors for board service
var (
	// Validation errors
	ErrEmptyName      = errors.New("board name cannot be empty")
	ErrNameTooLong    = errors.New("board name cannot exceed 100 characters")
	ErrInvalidBoardID = errors.New("invalid board ID")
	ErrInvalidOrgID   = errors.New("invalid organization ID")

	// Business logic errors
	ErrBoardNotEmpty = errors.New("cannot delete board with cards")
)
