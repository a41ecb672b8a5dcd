//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"message-feed/domain"
	"message-feed/errors"
)

type IUserRepository interface {
	CreateUser(email, username, hashedPassword string) (domain.User, error)
	GetUserByEmail(email string) (domain.User, error)
	GetUserByID(id uuid.UUID) (domain.User, error)
	GetUsersByIDs(ids []uuid.UUID) (map[uuid.UUID]domain.User, error)
}

const (
	userPrefix       = "user:"
	emailIndexPrefix = "useremail:"
)

type UserRepository struct {
	db *badger.DB
}

// diskUser is the stored form of a user. domain.User hides the password
// hash from serialization, so persistence uses its own shape.
type diskUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func fromUser(user domain.User) diskUser {
	return diskUser{
		ID:           user.ID,
		Email:        user.Email,
		Username:     user.Username,
		Role:         user.Role,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
}

func toUser(du diskUser) domain.User {
	return domain.User{
		ID:           du.ID,
		Email:        du.Email,
		Username:     du.Username,
		Role:         du.Role,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt.UTC(),
	}
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(id uuid.UUID) []byte {
	return []byte(userPrefix + id.String())
}

func emailIndexKey(email string) []byte {
	return []byte(emailIndexPrefix + email)
}

// CreateUser persists a new account. The email index entry enforces
// uniqueness inside the same transaction as the user record.
func (u UserRepository) CreateUser(email, username, hashedPassword string) (domain.User, error) {
	user := domain.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		Role:         "user",
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(fromUser(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailIndexKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return err
		}
		return txn.Set(emailIndexKey(email), []byte(user.ID.String()))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByEmail(email string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailIndexKey(email))
		if err != nil {
			return mapBadgerError(err)
		}
		rawID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		id, err := uuid.Parse(string(rawID))
		if err != nil {
			return err
		}
		return getUser(txn, id, &user)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByID(id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		return getUser(txn, id, &user)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// GetUsersByIDs fetches many users in one transaction. Unknown ids are
// simply absent from the result; the caller decides whether absence is an
// error. This is the batch function behind the per-request user loader.
func (u UserRepository) GetUsersByIDs(ids []uuid.UUID) (map[uuid.UUID]domain.User, error) {
	users := make(map[uuid.UUID]domain.User, len(ids))
	err := u.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var user domain.User
			if err := getUser(txn, id, &user); err != nil {
				if err == errors.ErrNotFound {
					continue
				}
				return err
			}
			users[id] = user
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func getUser(txn *badger.Txn, id uuid.UUID, out *domain.User) error {
	item, err := txn.Get(userKey(id))
	if err != nil {
		return mapBadgerError(err)
	}
	var du diskUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &du)
	}); err != nil {
		return err
	}
	*out = toUser(du)
	return nil
}
