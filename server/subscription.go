package server

import (
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"message-feed/domain/event"
	"message-feed/services"
)

// SubscriptionHandler streams new messages to websocket clients.
// Subscribing needs no authentication, matching the anonymous read access
// of the list endpoint.
type SubscriptionHandler struct {
	feedService services.IFeedService
	log         *slog.Logger
	upgrader    websocket.Upgrader
}

func NewSubscriptionHandler(feedService services.IFeedService, log *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		feedService: feedService,
		log:         log,
		upgrader:    websocket.Upgrader{},
	}
}

type messageCreatedPayload struct {
	Message MessageResponse `json:"message"`
}

// Subscribe upgrades the connection and forwards feed events until the
// client disconnects. The bus subscription is cancelled on the way out so
// the registry never accumulates dead subscribers.
func (h *SubscriptionHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := h.feedService.SubscribeMessageCreated()
	defer sub.Cancel()

	// Reads are discarded; their only job is detecting the disconnect.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-disconnected:
			h.log.Debug("Subscriber disconnected")
			return nil
		case evt, ok := <-sub.C():
			if !ok {
				return nil
			}
			created, isCreated := evt.(event.MessageCreated)
			if !isCreated {
				continue
			}
			payload := messageCreatedPayload{
				Message: MessageResponse{
					ID:        created.Message.ID.String(),
					Text:      created.Message.Text,
					CreatedAt: created.Message.CreatedAt.Format(timeFormat),
				},
			}
			if err := conn.WriteJSON(payload); err != nil {
				h.log.Debug("Failed to push event to subscriber", "error", err)
				return nil
			}
		}
	}
}
