//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"message-feed/domain"
	"message-feed/errors"
)

type IMessageRepository interface {
	CreateMessage(text string, userID uuid.UUID) (domain.Message, error)
	GetMessage(id uuid.UUID) (domain.Message, error)
	DeleteMessage(id uuid.UUID) (domain.Message, error)
	ListMessages(cursor *domain.Cursor, limit int) (domain.Connection, error)
}

const (
	messagePrefix = "msg:"
	idIndexPrefix = "msgid:"
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored form of a message.
type diskMessage struct {
	ID     uuid.UUID `json:"id"`
	Text   string    `json:"text"`
	UserID uuid.UUID `json:"user_id"`
	At     time.Time `json:"at"`
}

// messageKey builds the primary key "msg:{timestamp_padded}:{uuid}".
// The 19-digit zero padding makes lexicographic order equal chronological
// order, and the uuid suffix disambiguates two messages created in the
// same nanosecond, so cursor pagination neither skips nor duplicates rows.
func messageKey(at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, at.UnixNano(), id))
}

func idIndexKey(id uuid.UUID) []byte {
	return []byte(idIndexPrefix + id.String())
}

// CreateMessage assigns id and creation time and persists the record
// together with an id index entry in one transaction. Text rules are
// enforced by the service before the store is reached.
func (m MessageRepository) CreateMessage(text string, userID uuid.UUID) (domain.Message, error) {
	message := domain.Message{
		ID:        uuid.New(),
		Text:      text,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(fromMessage(message))
	if err != nil {
		return domain.Message{}, err
	}

	key := messageKey(message.CreatedAt, message.ID)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		// The id index stores the primary key so point lookups and deletes
		// do not need to scan the time-ordered keyspace.
		return txn.Set(idIndexKey(message.ID), key)
	})
	if err != nil {
		return domain.Message{}, err
	}
	return message, nil
}

// GetMessage resolves a message by id through the index.
// Returns ErrNotFound when no such message exists.
func (m MessageRepository) GetMessage(id uuid.UUID) (domain.Message, error) {
	var dm diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		primaryKey, err := resolvePrimaryKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(primaryKey)
		if err != nil {
			return mapBadgerError(err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dm)
		})
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(dm), nil
}

// DeleteMessage removes a message and its index entry, returning the
// deleted record so callers can react to it. Fails with ErrNotFound when
// the id is unknown. The delete is a hard delete.
func (m MessageRepository) DeleteMessage(id uuid.UUID) (domain.Message, error) {
	var dm diskMessage
	err := m.db.Update(func(txn *badger.Txn) error {
		primaryKey, err := resolvePrimaryKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(primaryKey)
		if err != nil {
			return mapBadgerError(err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &dm)
		}); err != nil {
			return err
		}
		if err := txn.Delete(primaryKey); err != nil {
			return err
		}
		return txn.Delete(idIndexKey(id))
	})
	if err != nil {
		return domain.Message{}, err
	}
	return toMessage(dm), nil
}

// ListMessages pages through the feed newest first. It scans limit+1 rows
// with a reverse iterator; when a cursor is present the scan resumes
// strictly after the cursor's position. The extra row only signals that
// another page exists and is not returned.
func (m MessageRepository) ListMessages(cursor *domain.Cursor, limit int) (domain.Connection, error) {
	if limit <= 0 {
		return domain.Connection{}, fmt.Errorf("%w: limit must be positive", errors.ErrValidation)
	}

	type row struct {
		cursor domain.Cursor
		value  []byte
	}
	var rows []row

	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible key; timestamps are 19 digits
			// starting below '9', so this lands on the most recent message.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		// A cursor points at an already-seen edge; skip it for a strict
		// exclusive bound. When that message was deleted in the meantime
		// the reverse seek already sits on the next older live row, which
		// must not be skipped.
		if cursor != nil && it.ValidForPrefix(prefix) && bytes.Equal(it.Item().Key(), seekKey) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if len(rows) == limit+1 {
				break
			}
			item := it.Item()
			r := row{cursor: domain.Cursor(item.Key()[len(prefix):])}
			if err := item.Value(func(val []byte) error {
				r.value = append(r.value, val...)
				return nil
			}); err != nil {
				return err
			}
			rows = append(rows, r)
		}
		return nil
	})
	if err != nil {
		return domain.Connection{}, err
	}

	hasNextPage := len(rows) > limit
	if hasNextPage {
		rows = rows[:limit]
	}

	edges := make([]domain.Edge, 0, len(rows))
	for _, r := range rows {
		var dm diskMessage
		if err := json.Unmarshal(r.value, &dm); err != nil {
			return domain.Connection{}, err
		}
		edges = append(edges, domain.Edge{Node: toMessage(dm), Cursor: r.cursor})
	}

	pageInfo := domain.PageInfo{HasNextPage: hasNextPage}
	if last, ok := lo.Last(edges); ok {
		pageInfo.EndCursor = last.Cursor
	}

	return domain.Connection{Edges: edges, PageInfo: pageInfo}, nil
}

func resolvePrimaryKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(idIndexKey(id))
	if err != nil {
		return nil, mapBadgerError(err)
	}
	return item.ValueCopy(nil)
}

func mapBadgerError(err error) error {
	if err == badger.ErrKeyNotFound {
		return errors.ErrNotFound
	}
	return err
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:     message.ID,
		Text:   message.Text,
		UserID: message.UserID,
		At:     message.CreatedAt,
	}
}

func toMessage(dm diskMessage) domain.Message {
	return domain.Message{
		ID:        dm.ID,
		Text:      dm.Text,
		UserID:    dm.UserID,
		CreatedAt: dm.At.UTC(),
	}
}
