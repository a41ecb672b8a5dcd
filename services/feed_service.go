package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"message-feed/auth"
	"message-feed/authorization"
	"message-feed/domain"
	"message-feed/domain/event"
	"message-feed/domain/feed"
	"message-feed/pubsub"
	"message-feed/repositories"
)

const (
	// DefaultListLimit is the page size used when a listing does not ask for one.
	DefaultListLimit = 100

	// MaxListLimit caps a requested page size so one call cannot drag the
	// whole feed through the author loader.
	MaxListLimit = 1000
)

type IFeedService interface {
	ListMessages(cmd feed.ListMessagesCommand) (domain.Connection, error)
	GetMessage(id uuid.UUID) (domain.Message, error)
	CreateMessage(ctx context.Context, cmd feed.PostMessageCommand) (domain.Message, error)
	DeleteMessage(ctx context.Context, cmd feed.DeleteMessageCommand) (bool, error)
	SubscribeMessageCreated() *pubsub.Subscription
}

// FeedService orchestrates the feed: it runs the authorization guards,
// talks to the message store and publishes creation events. It is the
// only component composing the others.
type FeedService struct {
	messages repositories.IMessageRepository
	bus      *pubsub.Bus
	log      *slog.Logger
}

func NewFeedService(messages repositories.IMessageRepository, bus *pubsub.Bus, log *slog.Logger) *FeedService {
	return &FeedService{messages: messages, bus: bus, log: log}
}

// ListMessages pages through the feed. No authorization: the feed is
// readable anonymously.
func (s *FeedService) ListMessages(cmd feed.ListMessagesCommand) (domain.Connection, error) {
	limit := cmd.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.messages.ListMessages(cmd.Cursor, limit)
}

func (s *FeedService) GetMessage(id uuid.UUID) (domain.Message, error) {
	return s.messages.GetMessage(id)
}

// CreateMessage stores a new message for the authenticated caller and
// then publishes it to live subscribers. The publish happens strictly
// after the store acknowledged the write; a failed write publishes
// nothing.
func (s *FeedService) CreateMessage(_ context.Context, cmd feed.PostMessageCommand) (domain.Message, error) {
	if err := authorization.IsAuthenticated(cmd.Identity, nil); err != nil {
		return domain.Message{}, err
	}
	if err := auth.ValidateMessage(auth.PostMessageRequest{Text: cmd.Text}); err != nil {
		return domain.Message{}, err
	}

	message, err := s.messages.CreateMessage(cmd.Text, cmd.Identity.ID)
	if err != nil {
		return domain.Message{}, err
	}

	s.bus.Publish(event.MessageCreated{Message: message})
	s.log.Debug("Message created", "message_id", message.ID, "user_id", message.UserID)
	return message, nil
}

// DeleteMessage removes a message the caller owns. Checks run in order:
// authentication, existence, ownership. A missing message yields NotFound
// regardless of who asks, and a foreign message yields Forbidden. The
// guards are not composed into a single authorization.Chain here because
// the existence fetch sits between them: IsAuthenticated must reject
// anonymous callers before any store access, and IsMessageOwner needs the
// fetched message as its target.
func (s *FeedService) DeleteMessage(_ context.Context, cmd feed.DeleteMessageCommand) (bool, error) {
	if err := authorization.IsAuthenticated(cmd.Identity, nil); err != nil {
		return false, err
	}

	message, err := s.messages.GetMessage(cmd.ID)
	if err != nil {
		return false, err
	}

	if err := authorization.IsMessageOwner(cmd.Identity, &message); err != nil {
		return false, err
	}

	if _, err := s.messages.DeleteMessage(cmd.ID); err != nil {
		return false, err
	}
	s.log.Debug("Message deleted", "message_id", cmd.ID, "user_id", cmd.Identity.ID)
	return true, nil
}

// SubscribeMessageCreated registers a live subscriber for new messages.
// Subscribing is deliberately unauthenticated, matching the anonymous
// read access of ListMessages.
func (s *FeedService) SubscribeMessageCreated() *pubsub.Subscription {
	return s.bus.Subscribe(event.TopicMessageCreated)
}
