package label

import "errors"

// Label-related errors
var (
	// Validation errors
	ErrEmptyName      = errors.New("label name cannot be empty")
	ErrNameTooLong    = errors.New("label name cannot exceed 50 characters")
	ErrInvalidColor   = errors.New("invalid color format, must be hex like #FF5733")
	ErrInvalidLabelID = errors.New("invalid label ID")
	ErrInvalidBoardID = errors.New("invalid board ID")
	ErrInvalidCardID  = errors.New("invalid card ID")

	// Business logic errors
	ErrDuplicateName = errors.New("board already has a label with this name")
)
