package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"message-feed/domain"
	"message-feed/domain/event"
	"message-feed/domain/feed"
	"message-feed/errors"
	"message-feed/mocks"
	"message-feed/pubsub"
)

func newFeedService(t *testing.T) (*FeedService, *mocks.MockIMessageRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	messages := mocks.NewMockIMessageRepository(ctrl)
	bus := pubsub.NewBus(slog.Default(), 4)
	return NewFeedService(messages, bus, slog.Default()), messages
}

func identityFor(userID uuid.UUID) *domain.Identity {
	return &domain.Identity{ID: userID, Email: "alice@example.com", Username: "alice"}
}

func Test_Create_Message_Publishes_After_Store(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	userID := uuid.New()
	stored := domain.Message{ID: uuid.New(), Text: "hello feed", UserID: userID, CreatedAt: time.Now().UTC()}
	messages.EXPECT().CreateMessage("hello feed", userID).Return(stored, nil)

	sub := service.SubscribeMessageCreated()
	defer sub.Cancel()

	created, err := service.CreateMessage(context.Background(), feed.PostMessageCommand{
		Text:     "hello feed",
		Identity: identityFor(userID),
	})
	req.NoError(err)
	req.Equal(stored.ID, created.ID)

	// The stored message reaches the live subscriber
	select {
	case evt := <-sub.C():
		published := evt.(event.MessageCreated)
		req.Equal(stored.ID, published.Message.ID)
		req.Equal(stored.Text, published.Message.Text)
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}
}

func Test_Create_Message_Unauthenticated(t *testing.T) {
	req := require.New(t)
	service, _ := newFeedService(t)

	sub := service.SubscribeMessageCreated()
	defer sub.Cancel()

	// No EXPECT on the repository: the store must never be touched
	_, err := service.CreateMessage(context.Background(), feed.PostMessageCommand{Text: "hello"})
	req.ErrorIs(err, errors.ErrUnauthenticated)

	select {
	case evt := <-sub.C():
		req.Failf("event published for rejected message", "%v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Create_Message_Rejects_Invalid_Text(t *testing.T) {
	req := require.New(t)
	service, _ := newFeedService(t)

	sub := service.SubscribeMessageCreated()
	defer sub.Cancel()

	// No EXPECT on the repository: invalid text never reaches the store
	_, err := service.CreateMessage(context.Background(), feed.PostMessageCommand{
		Text:     "",
		Identity: identityFor(uuid.New()),
	})
	req.ErrorIs(err, errors.ErrValidation)

	long := make([]rune, domain.MaxMessageLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = service.CreateMessage(context.Background(), feed.PostMessageCommand{
		Text:     string(long),
		Identity: identityFor(uuid.New()),
	})
	req.ErrorIs(err, errors.ErrValidation)

	select {
	case evt := <-sub.C():
		req.Failf("event published for rejected message", "%v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Create_Message_Store_Failure_Publishes_Nothing(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	userID := uuid.New()
	messages.EXPECT().CreateMessage("doomed write", userID).Return(domain.Message{}, stderrors.New("disk full"))

	sub := service.SubscribeMessageCreated()
	defer sub.Cancel()

	_, err := service.CreateMessage(context.Background(), feed.PostMessageCommand{
		Text:     "doomed write",
		Identity: identityFor(userID),
	})
	req.Error(err)

	select {
	case evt := <-sub.C():
		req.Failf("event published for failed write", "%v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func Test_Delete_Message_By_Owner(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	userID := uuid.New()
	message := domain.Message{ID: uuid.New(), Text: "mine", UserID: userID}
	messages.EXPECT().GetMessage(message.ID).Return(message, nil)
	messages.EXPECT().DeleteMessage(message.ID).Return(message, nil)

	deleted, err := service.DeleteMessage(context.Background(), feed.DeleteMessageCommand{
		ID:       message.ID,
		Identity: identityFor(userID),
	})
	req.NoError(err)
	req.True(deleted)
}

func Test_Delete_Message_Unauthenticated(t *testing.T) {
	req := require.New(t)
	service, _ := newFeedService(t)

	_, err := service.DeleteMessage(context.Background(), feed.DeleteMessageCommand{ID: uuid.New()})
	req.ErrorIs(err, errors.ErrUnauthenticated)
}

func Test_Delete_Message_Not_Owner(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	message := domain.Message{ID: uuid.New(), Text: "someone else's", UserID: uuid.New()}
	messages.EXPECT().GetMessage(message.ID).Return(message, nil)
	// No DeleteMessage expectation: the message must remain

	_, err := service.DeleteMessage(context.Background(), feed.DeleteMessageCommand{
		ID:       message.ID,
		Identity: identityFor(uuid.New()),
	})
	req.ErrorIs(err, errors.ErrForbidden)
}

func Test_Delete_Message_Not_Found(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	id := uuid.New()
	messages.EXPECT().GetMessage(id).Return(domain.Message{}, errors.ErrNotFound)

	_, err := service.DeleteMessage(context.Background(), feed.DeleteMessageCommand{
		ID:       id,
		Identity: identityFor(uuid.New()),
	})
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_List_Messages_Default_Limit(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	messages.EXPECT().ListMessages(gomock.Nil(), DefaultListLimit).Return(domain.Connection{}, nil)

	_, err := service.ListMessages(feed.ListMessagesCommand{})
	req.NoError(err)
}

func Test_List_Messages_Caps_Limit(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	messages.EXPECT().ListMessages(gomock.Nil(), MaxListLimit).Return(domain.Connection{}, nil)

	_, err := service.ListMessages(feed.ListMessagesCommand{Limit: MaxListLimit + 500})
	req.NoError(err)
}

func Test_List_Messages_Forwards_Cursor(t *testing.T) {
	req := require.New(t)
	service, messages := newFeedService(t)

	cursor := domain.Cursor("0190000000000000000:0199b2aa-0000-7000-8000-000000000000")
	messages.EXPECT().ListMessages(&cursor, 25).Return(domain.Connection{}, nil)

	_, err := service.ListMessages(feed.ListMessagesCommand{Cursor: &cursor, Limit: 25})
	req.NoError(err)
}
