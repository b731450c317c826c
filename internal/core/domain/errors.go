package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation               = errors.New("validation failed")
	ErrUserExists               = errors.New("username already exists")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("access forbidden")
	ErrPasswordRotationRequired = errors.New("password rotation required")
	ErrSaleNotFound             = errors.New("sale not found")
	ErrRateLimited              = errors.New("rate limit exceeded")
)

// Token failure kinds. All of them unwrap to ErrUnauthorized so that callers
// outside the token layer see a single outcome.
var (
	ErrTokenExpired      = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenMalformed    = fmt.Errorf("%w: token malformed", ErrUnauthorized)
	ErrTokenBadSignature = fmt.Errorf("%w: token signature invalid", ErrUnauthorized)
)

// ValidationError lists every field rule an input broke.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError from one or more field messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
