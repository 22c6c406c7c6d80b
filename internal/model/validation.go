package model

import (
	"regexp"

	"github.com/Relton66/budgetapp/internal/common"
)

const (
	maxNameLength    = 50
	maxCommentLength = 100
)

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// ValidateName checks that a user-supplied name is non-empty, alphanumeric
// with spaces, and at most 50 characters.
func ValidateName(name string) error {
	if len(name) > maxNameLength {
		return common.ErrNameTooLong
	}
	if !namePattern.MatchString(name) {
		return common.ErrInvalidName
	}
	return nil
}

// ValidateComment checks the optional free-text comment on a ledger entry.
func ValidateComment(comment string) error {
	if len(comment) > maxCommentLength {
		return common.ErrCommentTooLong
	}
	return nil
}
