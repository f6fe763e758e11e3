package account

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrValidation matches any *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFoundOrExpired covers absent, mismatched and stale tokens alike.
	ErrNotFoundOrExpired = errors.New("token not found or expired")
	// ErrAlreadyExists means another row already owns the address being confirmed.
	ErrAlreadyExists = errors.New("email already registered")
	// ErrNotFound means no account owns the requested email.
	ErrNotFound = errors.New("user not found")
	// ErrNotVerifiedOrNotFound means no verified account owns the login email.
	ErrNotVerifiedOrNotFound = errors.New("user not found or not verified")
	// ErrBadCredentials means the password did not match.
	ErrBadCredentials = errors.New("bad credentials")
	// ErrUnauthenticated means the bearer token is missing, invalid, expired or revoked.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError carries field-level messages surfaced verbatim to clients.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
