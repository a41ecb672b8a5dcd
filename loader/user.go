package loader

import (
	"context"
	"time"

	"github.com/google/uuid"

	"message-feed/domain"
	"message-feed/repositories"
)

// UserLoader batches author lookups for one request.
type UserLoader = Loader[uuid.UUID, domain.User]

// NewUserLoader builds the per-request author loader on top of the user
// repository's batch fetch.
func NewUserLoader(repo repositories.IUserRepository, wait time.Duration) *UserLoader {
	return New(func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
		return repo.GetUsersByIDs(ids)
	}, wait)
}
