// Package errors defines the sentinel failure kinds of the feed service.
// Every boundary maps these to its own representation (HTTP status,
// websocket close reason); business code wraps them with %w so callers
// can test with errors.Is.
package errors

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthenticated is returned when an operation requires a caller
	// identity and none was provided.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the caller is authenticated but does
	// not own the targeted resource.
	ErrForbidden = errors.New("not authorized")

	// ErrNotFound is returned when a referenced entity does not exist.
	// It is deliberately distinct from ErrForbidden so clients can tell
	// "does not exist" from "exists but not yours".
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned for malformed input, e.g. empty message text.
	ErrValidation = errors.New("validation failed")

	ErrSessionExpired = errors.New("session expired, please login again")
	ErrInvalidToken   = errors.New("invalid token")

	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("password does not meet complexity requirements")
	ErrTokenGeneration    = errors.New("token generation failed")
)

// operator-only prefixes stripped before a message reaches a caller.
var internalPrefixes = []string{
	"badger:",
	"storage:",
}

// Normalize returns the user-facing form of an error message. Diagnostic
// prefixes meant for operators are removed; the cause itself is kept
// legible.
func Normalize(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, prefix := range internalPrefixes {
		if rest, ok := strings.CutPrefix(msg, prefix); ok {
			msg = strings.TrimSpace(rest)
		}
	}
	return msg
}
