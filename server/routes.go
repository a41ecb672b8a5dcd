package server

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"message-feed/observability"
	"message-feed/repositories"
	"message-feed/services"
)

// New assembles the echo instance with all feed routes. Every request
// runs behind the identity middleware and gets its own user loader scope.
func New(
	feedService services.IFeedService,
	authService services.IAuthService,
	users repositories.IUserRepository,
	health *observability.HealthReporter,
	loaderWait time.Duration,
	log *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(Identity(authService))
	e.Use(UserLoaderScope(users, loaderWait))

	handler := NewHandler(feedService, authService, health)
	subscription := NewSubscriptionHandler(feedService, log)

	e.POST("/register", handler.Register)
	e.POST("/login", handler.Login)

	e.GET("/messages", handler.ListMessages)
	e.GET("/messages/subscribe", subscription.Subscribe)
	e.GET("/messages/:id", handler.GetMessage)
	e.POST("/messages", handler.PostMessage)
	e.DELETE("/messages/:id", handler.DeleteMessage)

	e.GET("/healthz", handler.Health)

	return e
}
