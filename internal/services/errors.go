package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the service layer. Handlers map these onto HTTP
// statuses with errors.Is.
var (
	// ErrNotFound covers both a missing record and a malformed id; the two
	// are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers bad or missing input.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateEmail is a validation failure for an already-registered
	// email address. It wraps ErrValidation so both can be matched.
	ErrDuplicateEmail = fmt.Errorf("%w: email already registered", ErrValidation)

	// ErrInvalidCredentials is returned for any login failure. It never
	// reveals whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
