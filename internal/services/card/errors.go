package card

import "errors"

// Card-related errors
var (
	// Validation errors
	ErrEmptyTitle        = errors.New("card title cannot be empty")
	ErrTitleTooLong      = errors.New("card title cannot exceed 255 characters")
	ErrDescriptionTooBig = errors.New("card description cannot exceed 10000 characters")
	ErrInvalidCardID     = errors.New("invalid card ID")
	ErrInvalidColumnID   = errors.New("invalid column ID")
	ErrInvalidBoardID    = errors.New("invalid board ID")
	ErrInvalidIndex      = errors.New("index cannot be negative")
	ErrEmptyBatch        = errors.New("batch must contain at least one move")
	ErrNothingToUpdate   = errors.New("update must change the title or the description")
)
