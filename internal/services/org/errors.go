package org

import "errors"

// Organization-related errors
var (
	// Validation errors
	ErrEmptyName       = errors.New("organization name cannot be empty")
	ErrNameTooLong     = errors.New("organization name cannot exceed 100 characters")
	ErrInvalidOrgID    = errors.New("invalid organization ID")
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidRole     = errors.New("role must be viewer, member, admin or owner")
	ErrInvalidResource = errors.New("resource must be boards, columns or cards")
	ErrNoActor         = errors.New("no acting user")

	// Business logic errors
	ErrLastOwner = errors.New("an organization must keep at least one owner")
)
