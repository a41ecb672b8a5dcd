package event

import "message-feed/domain"

// DomainEvent is the payload carried on the feed's event bus. Each event
// names the topic it belongs to.
type DomainEvent interface {
	Topic() string
}

// TopicMessageCreated is published once per successfully stored message.
const TopicMessageCreated = "MESSAGE_CREATED"

// MessageCreated notifies live subscribers of a new feed message.
type MessageCreated struct {
	Message domain.Message
}

func (e MessageCreated) Topic() string {
	return TopicMessageCreated
}
