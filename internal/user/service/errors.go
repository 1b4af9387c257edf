package service

import (
	"fmt"

	commonerrors "github.com/avlasov/userhub/internal/common/errors"
)

var (
	ErrUserNotFound = commonerrors.ErrUserNotFound

	ErrUsernameTaken = commonerrors.NewDomainError(
		"USERNAME_TAKEN",
		commonerrors.CategoryConflict,
		409,
		"username already exists",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		409,
		"email already registered",
	)
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func AsValidationError(err error) (*ValidationError, bool) {
	vErr, ok := err.(*ValidationError)
	return vErr, ok
}

var (
	ErrValidationUsernameLength = &ValidationError{Field: "username", Reason: "length must be between 3 and 32 characters"}
	ErrValidationUsernameChars  = &ValidationError{Field: "username", Reason: "must contain only latin letters, digits, '-' and '_'"}
	ErrValidationPasswordLength = &ValidationError{Field: "password", Reason: "length must be between 8 and 72 characters"}
	ErrValidationPasswordWeak   = &ValidationError{Field: "password", Reason: "must contain at least one letter and one digit"}
	ErrValidationEmailFormat    = &ValidationError{Field: "email", Reason: "must be a valid email address"}
	ErrValidationEmailLength    = &ValidationError{Field: "email", Reason: "is too long"}
)
