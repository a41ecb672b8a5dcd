package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"message-feed/domain"
	"message-feed/domain/feed"
	"message-feed/errors"
	"message-feed/observability"
	"message-feed/services"
)

// Handler exposes the feed over HTTP. It is deliberately thin: all
// ordering, authorization and consistency decisions live in the service
// layer; the handler only parses requests and shapes responses.
type Handler struct {
	feedService services.IFeedService
	authService services.IAuthService
	health      *observability.HealthReporter
}

func NewHandler(feedService services.IFeedService, authService services.IAuthService, health *observability.HealthReporter) *Handler {
	return &Handler{feedService: feedService, authService: authService, health: health}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type postMessageRequest struct {
	Text string `json:"text"`
}

type listMessagesQuery struct {
	Cursor string `query:"cursor"`
	Limit  int    `query:"limit"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return mapError(c, errors.ErrValidation)
	}
	token, err := h.authService.Register(req.Email, req.Username, req.Password)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, TokenResponse{Token: string(token)})
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return mapError(c, errors.ErrValidation)
	}
	token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, TokenResponse{Token: string(token)})
}

func (h *Handler) ListMessages(c echo.Context) error {
	var query listMessagesQuery
	if err := c.Bind(&query); err != nil {
		return mapError(c, errors.ErrValidation)
	}

	var cursor *domain.Cursor
	if query.Cursor != "" {
		cursor = &query.Cursor
	}

	connection, err := h.feedService.ListMessages(feed.ListMessagesCommand{
		Cursor: cursor,
		Limit:  query.Limit,
	})
	if err != nil {
		return mapError(c, err)
	}

	response, err := toConnectionResponse(c.Request().Context(), userLoaderFrom(c), connection)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

func (h *Handler) GetMessage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return mapError(c, errors.ErrNotFound)
	}

	message, err := h.feedService.GetMessage(id)
	if err != nil {
		return mapError(c, err)
	}

	responses, err := toMessageResponses(c.Request().Context(), userLoaderFrom(c), []domain.Message{message})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, responses[0])
}

func (h *Handler) PostMessage(c echo.Context) error {
	var req postMessageRequest
	if err := c.Bind(&req); err != nil {
		return mapError(c, errors.ErrValidation)
	}

	message, err := h.feedService.CreateMessage(c.Request().Context(), feed.PostMessageCommand{
		Text:     req.Text,
		Identity: identityFrom(c),
	})
	if err != nil {
		return mapError(c, err)
	}

	responses, err := toMessageResponses(c.Request().Context(), userLoaderFrom(c), []domain.Message{message})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, responses[0])
}

func (h *Handler) DeleteMessage(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return mapError(c, errors.ErrNotFound)
	}

	deleted, err := h.feedService.DeleteMessage(c.Request().Context(), feed.DeleteMessageCommand{
		ID:       id,
		Identity: identityFrom(c),
	})
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResponse{Deleted: deleted})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, h.health.Stats())
}
