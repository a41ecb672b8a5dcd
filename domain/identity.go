package domain

import "github.com/google/uuid"

// Identity is the authenticated caller resolved from a token.
// A nil *Identity means the caller is anonymous. It is built once per
// inbound request and treated as read-only for the request's duration.
type Identity struct {
	ID       uuid.UUID
	Email    string
	Username string
	Role     string
}
