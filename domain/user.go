package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account behind a message. Referenced, never owned, by Message.
// PasswordHash stays server-side and is not part of any response payload.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
