// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Lookup errors.
	ErrNotFound       = errors.New("not found")
	ErrVendorNotFound = errors.New("vendor not found")

	// Validation errors.
	ErrInvalidAmount            = errors.New("amount has incorrect format")
	ErrInvalidName              = errors.New("name must be alphanumeric")
	ErrNameTooLong              = errors.New("name cannot be more than 50 characters")
	ErrDuplicateName            = errors.New("name already exists")
	ErrMissingDate              = errors.New("date is missing")
	ErrEndBeforeStart           = errors.New("end date must be after start date")
	ErrCommentTooLong           = errors.New("comments cannot be more than 100 characters")
	ErrEmptyAllocations         = errors.New("budget needs at least one category allocation")
	ErrAllocationsExceedBalance = errors.New("category allocations exceed starting balance")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
