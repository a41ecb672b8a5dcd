// Package feed defines the commands accepted by the feed service.
package feed

import (
	"github.com/google/uuid"

	"message-feed/domain"
)

type PostMessageCommand struct {
	Text     string
	Identity *domain.Identity
}

type ListMessagesCommand struct {
	Cursor *domain.Cursor
	Limit  int
}

type DeleteMessageCommand struct {
	ID       uuid.UUID
	Identity *domain.Identity
}
