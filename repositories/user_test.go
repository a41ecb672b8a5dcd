package repositories

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"message-feed/errors"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	created, err := repo.CreateUser("alice@example.com", "alice", "hashed-secret")
	req.NoError(err)
	req.NotEqual(uuid.Nil, created.ID)
	req.Equal("user", created.Role)

	byEmail, err := repo.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
	req.Equal("hashed-secret", byEmail.PasswordHash)

	byID, err := repo.GetUserByID(created.ID)
	req.NoError(err)
	req.Equal(created.Username, byID.Username)
}

func Test_Create_User_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.CreateUser("bob@example.com", "bob", "hash-1")
	req.NoError(err)

	_, err = repo.CreateUser("bob@example.com", "bobby", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_User_NotFound(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.GetUserByEmail("nobody@example.com")
	req.ErrorIs(err, errors.ErrNotFound)

	_, err = repo.GetUserByID(uuid.New())
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Get_Users_By_IDs(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	alice, err := repo.CreateUser("alice@example.com", "alice", "h")
	req.NoError(err)
	bob, err := repo.CreateUser("bob@example.com", "bob", "h")
	req.NoError(err)
	unknown := uuid.New()

	// Unknown ids are absent, not errors
	users, err := repo.GetUsersByIDs([]uuid.UUID{alice.ID, unknown, bob.ID})
	req.NoError(err)
	req.Len(users, 2)
	req.Equal("alice", users[alice.ID].Username)
	req.Equal("bob", users[bob.ID].Username)
	_, found := users[unknown]
	req.False(found)
}
