package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"message-feed/domain"
	"message-feed/errors"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Create_And_Get_Message(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())
	userID := uuid.New()

	created, err := repo.CreateMessage("published and gone in 5 seconds", userID)
	req.NoError(err)
	req.NotEqual(uuid.Nil, created.ID)
	req.Equal(userID, created.UserID)
	req.False(created.CreatedAt.IsZero())

	fetched, err := repo.GetMessage(created.ID)
	req.NoError(err)
	req.Equal(created.ID, fetched.ID)
	req.Equal(created.Text, fetched.Text)
	req.Equal(created.UserID, fetched.UserID)
	req.True(created.CreatedAt.Equal(fetched.CreatedAt))
}

func Test_Get_Message_NotFound(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	_, err := repo.GetMessage(uuid.New())
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Delete_Message(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	created, err := repo.CreateMessage("to be removed", uuid.New())
	req.NoError(err)

	deleted, err := repo.DeleteMessage(created.ID)
	req.NoError(err)
	req.Equal(created.ID, deleted.ID)
	req.Equal(created.Text, deleted.Text)

	_, err = repo.GetMessage(created.ID)
	req.ErrorIs(err, errors.ErrNotFound)

	// Deleting again fails: the record is gone, index included
	_, err = repo.DeleteMessage(created.ID)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_List_Messages_Empty_Store(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	connection, err := repo.ListMessages(nil, 10)
	req.NoError(err)
	req.Empty(connection.Edges)
	req.False(connection.PageInfo.HasNextPage)
	req.Empty(connection.PageInfo.EndCursor)
}

func Test_List_Messages_Pagination(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())
	userID := uuid.New()

	// Insert 5 messages, oldest first
	for i := 1; i <= 5; i++ {
		_, err := repo.CreateMessage(fmt.Sprintf("message %d", i), userID)
		req.NoError(err)
	}

	// --- PAGE 1 ---
	page1, err := repo.ListMessages(nil, 2)
	req.NoError(err)
	req.Len(page1.Edges, 2)
	req.Equal("message 5", page1.Edges[0].Node.Text) // newest first
	req.Equal("message 4", page1.Edges[1].Node.Text)
	req.True(page1.PageInfo.HasNextPage)
	req.Equal(page1.Edges[1].Cursor, page1.PageInfo.EndCursor)

	// --- PAGE 2 ---
	cursor := page1.PageInfo.EndCursor
	page2, err := repo.ListMessages(&cursor, 2)
	req.NoError(err)
	req.Len(page2.Edges, 2)
	req.Equal("message 3", page2.Edges[0].Node.Text)
	req.Equal("message 2", page2.Edges[1].Node.Text)
	req.True(page2.PageInfo.HasNextPage)

	// --- PAGE 3 (end) ---
	cursor = page2.PageInfo.EndCursor
	page3, err := repo.ListMessages(&cursor, 2)
	req.NoError(err)
	req.Len(page3.Edges, 1)
	req.Equal("message 1", page3.Edges[0].Node.Text)
	req.False(page3.PageInfo.HasNextPage)
	req.Equal(page3.Edges[0].Cursor, page3.PageInfo.EndCursor)
}

func Test_List_Messages_Exact_Page_Boundary(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())

	for i := 1; i <= 4; i++ {
		_, err := repo.CreateMessage(fmt.Sprintf("message %d", i), uuid.New())
		req.NoError(err)
	}

	// Exactly limit rows left: no phantom next page
	page, err := repo.ListMessages(nil, 4)
	req.NoError(err)
	req.Len(page.Edges, 4)
	req.False(page.PageInfo.HasNextPage)

	cursor := page.PageInfo.EndCursor
	empty, err := repo.ListMessages(&cursor, 4)
	req.NoError(err)
	req.Empty(empty.Edges)
	req.False(empty.PageInfo.HasNextPage)
	req.Empty(empty.PageInfo.EndCursor)
}

func Test_List_Messages_Completeness(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())
	userID := uuid.New()

	total := 10
	for i := 1; i <= total; i++ {
		_, err := repo.CreateMessage(fmt.Sprintf("message %d", i), userID)
		req.NoError(err)
	}

	// Walking all pages yields every message exactly once, newest first
	seen := make(map[uuid.UUID]struct{})
	var lastCreatedAt time.Time
	var cursor *domain.Cursor
	for page := 0; ; page++ {
		req.Less(page, total, "pagination did not terminate")
		connection, err := repo.ListMessages(cursor, 3)
		req.NoError(err)
		for _, edge := range connection.Edges {
			if !lastCreatedAt.IsZero() {
				req.True(edge.Node.CreatedAt.Before(lastCreatedAt) || edge.Node.CreatedAt.Equal(lastCreatedAt))
			}
			lastCreatedAt = edge.Node.CreatedAt
			_, duplicate := seen[edge.Node.ID]
			req.False(duplicate, "message returned twice")
			seen[edge.Node.ID] = struct{}{}
		}
		if !connection.PageInfo.HasNextPage {
			break
		}
		endCursor := connection.PageInfo.EndCursor
		cursor = &endCursor
	}
	req.Len(seen, total)
}

func Test_List_Messages_Cursor_Message_Deleted(t *testing.T) {
	req := require.New(t)
	repo := NewMessageRepository(newTestDB(t), slog.Default())
	userID := uuid.New()

	var created []domain.Message
	for i := 1; i <= 3; i++ {
		message, err := repo.CreateMessage(fmt.Sprintf("message %d", i), userID)
		req.NoError(err)
		created = append(created, message)
	}

	page1, err := repo.ListMessages(nil, 1)
	req.NoError(err)
	req.Len(page1.Edges, 1)
	req.Equal("message 3", page1.Edges[0].Node.Text)

	// The message the cursor points at disappears between pages. The next
	// page must still start strictly after that position without skipping
	// the next live row.
	_, err = repo.DeleteMessage(created[2].ID)
	req.NoError(err)

	cursor := page1.PageInfo.EndCursor
	page2, err := repo.ListMessages(&cursor, 10)
	req.NoError(err)
	req.Len(page2.Edges, 2)
	req.Equal("message 2", page2.Edges[0].Node.Text)
	req.Equal("message 1", page2.Edges[1].Node.Text)
	req.False(page2.PageInfo.HasNextPage)
}

func Test_List_Messages_Timestamp_Tie(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewMessageRepository(db, slog.Default())

	// Two messages sharing the exact same creation instant: the uuid
	// suffix of the key keeps the order total, so paging with limit 1
	// returns both without skips or duplicates.
	at := time.Now().UTC()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	for _, id := range ids {
		dm := diskMessage{ID: id, Text: "tied", UserID: uuid.New(), At: at}
		data, err := json.Marshal(dm)
		req.NoError(err)
		key := messageKey(at, id)
		err = db.Update(func(txn *badger.Txn) error {
			if err := txn.Set(key, data); err != nil {
				return err
			}
			return txn.Set(idIndexKey(id), key)
		})
		req.NoError(err)
	}

	page1, err := repo.ListMessages(nil, 1)
	req.NoError(err)
	req.Len(page1.Edges, 1)
	req.True(page1.PageInfo.HasNextPage)

	cursor := page1.PageInfo.EndCursor
	page2, err := repo.ListMessages(&cursor, 1)
	req.NoError(err)
	req.Len(page2.Edges, 1)
	req.False(page2.PageInfo.HasNextPage)
	req.NotEqual(page1.Edges[0].Node.ID, page2.Edges[0].Node.ID)
}
