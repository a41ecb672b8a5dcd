package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"message-feed/domain"
	"message-feed/loader"
)

// timeFormat keeps nanosecond precision so a rendered created_at stays
// unambiguous next to its cursor.
const timeFormat = time.RFC3339Nano

// UserResponse is the outward shape of a message author.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MessageResponse is a message with its author resolved. User is null
// when the author no longer exists.
type MessageResponse struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	CreatedAt string        `json:"created_at"`
	User      *UserResponse `json:"user"`
}

type EdgeResponse struct {
	Node   MessageResponse `json:"node"`
	Cursor string          `json:"cursor"`
}

type PageInfoResponse struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

type ConnectionResponse struct {
	Edges    []EdgeResponse   `json:"edges"`
	PageInfo PageInfoResponse `json:"page_info"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

func toUserResponse(user domain.User) *UserResponse {
	return &UserResponse{
		ID:       user.ID.String(),
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	}
}

// toMessageResponses resolves the authors of all messages through the
// request's batch loader: one batched fetch regardless of page size, and
// repeated authors resolve from the loader cache.
func toMessageResponses(ctx context.Context, users *loader.UserLoader, messages []domain.Message) ([]MessageResponse, error) {
	var authors []*domain.User
	if users != nil {
		ids := lo.Map(messages, func(m domain.Message, _ int) uuid.UUID {
			return m.UserID
		})
		var err error
		authors, err = users.LoadAll(ctx, ids)
		if err != nil {
			return nil, err
		}
	}

	responses := make([]MessageResponse, len(messages))
	for i, message := range messages {
		responses[i] = MessageResponse{
			ID:        message.ID.String(),
			Text:      message.Text,
			CreatedAt: message.CreatedAt.Format(timeFormat),
		}
		if authors != nil && authors[i] != nil {
			responses[i].User = toUserResponse(*authors[i])
		}
	}
	return responses, nil
}

func toConnectionResponse(ctx context.Context, users *loader.UserLoader, connection domain.Connection) (ConnectionResponse, error) {
	nodes := lo.Map(connection.Edges, func(e domain.Edge, _ int) domain.Message {
		return e.Node
	})
	messages, err := toMessageResponses(ctx, users, nodes)
	if err != nil {
		return ConnectionResponse{}, err
	}

	edges := make([]EdgeResponse, len(connection.Edges))
	for i, edge := range connection.Edges {
		edges[i] = EdgeResponse{Node: messages[i], Cursor: edge.Cursor}
	}
	return ConnectionResponse{
		Edges: edges,
		PageInfo: PageInfoResponse{
			HasNextPage: connection.PageInfo.HasNextPage,
			EndCursor:   connection.PageInfo.EndCursor,
		},
	}, nil
}
