// Package domain contains the core concepts of the message feed.
// Messages are immutable once created and validated at the storage boundary.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength bounds the text of a single message, in runes.
const MaxMessageLength = 500

// Message represents one immutable entry of the feed.
// UserID is a weak reference to the author; the message does not own the user.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
