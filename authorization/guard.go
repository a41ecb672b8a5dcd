// Package authorization implements the guard chain protecting mutating
// feed operations. A guard is a pure predicate over the caller identity
// and the targeted message; guards compose left to right and the first
// failure short-circuits the chain, so the wrapped operation never runs
// after a failed guard.
package authorization

import (
	"message-feed/domain"
	"message-feed/errors"
)

// Guard checks one authorization rule. msg may be nil for operations that
// have no target message (e.g. creation).
type Guard func(identity *domain.Identity, msg *domain.Message) error

// IsAuthenticated passes iff a caller identity is present.
func IsAuthenticated(identity *domain.Identity, _ *domain.Message) error {
	if identity == nil {
		return errors.ErrUnauthenticated
	}
	return nil
}

// IsMessageOwner passes iff the target message belongs to the caller.
// The message must already be resolved; a missing message is the caller's
// NotFound concern and is surfaced before this guard runs.
func IsMessageOwner(identity *domain.Identity, msg *domain.Message) error {
	if identity == nil {
		return errors.ErrUnauthenticated
	}
	if msg == nil || msg.UserID != identity.ID {
		return errors.ErrForbidden
	}
	return nil
}

// Chain combines guards into one, evaluated in order with early exit.
func Chain(guards ...Guard) Guard {
	return func(identity *domain.Identity, msg *domain.Message) error {
		for _, guard := range guards {
			if err := guard(identity, msg); err != nil {
				return err
			}
		}
		return nil
	}
}
