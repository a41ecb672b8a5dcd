package server

import (
	stderrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"message-feed/errors"
)

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// mapError converts a sentinel failure kind to its HTTP representation.
// The message is normalized so operator-only diagnostics never reach the
// caller, while the user-facing cause stays legible.
func mapError(c echo.Context, err error) error {
	kind, status := classify(err)
	return c.JSON(status, errorResponse{Kind: kind, Message: errors.Normalize(err)})
}

func classify(err error) (string, int) {
	switch {
	case stderrors.Is(err, errors.ErrUnauthenticated),
		stderrors.Is(err, errors.ErrSessionExpired),
		stderrors.Is(err, errors.ErrInvalidToken),
		stderrors.Is(err, errors.ErrInvalidCredentials):
		return "UNAUTHENTICATED", http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrForbidden):
		return "FORBIDDEN", http.StatusForbidden
	case stderrors.Is(err, errors.ErrNotFound):
		return "NOT_FOUND", http.StatusNotFound
	case stderrors.Is(err, errors.ErrValidation),
		stderrors.Is(err, errors.ErrInvalidPassword),
		stderrors.Is(err, errors.ErrUserAlreadyExists):
		return "VALIDATION_ERROR", http.StatusBadRequest
	default:
		return "INTERNAL", http.StatusInternalServerError
	}
}
