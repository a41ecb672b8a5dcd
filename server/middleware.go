package server

import (
	"time"

	"github.com/labstack/echo/v4"

	"message-feed/domain"
	"message-feed/loader"
	"message-feed/repositories"
	"message-feed/services"
)

const (
	identityContextKey   = "identity"
	userLoaderContextKey = "user_loader"

	// TokenHeader carries the session token.
	TokenHeader = "X-Token"
)

// Identity resolves the caller from the token header and stores it in the
// request context. Anonymous requests pass through with no identity; only
// a present-but-bad token is rejected, so public routes stay reachable
// without credentials.
func Identity(authService services.IAuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(TokenHeader)
			identity, err := authService.VerifyIdentity(token)
			if err != nil {
				return mapError(c, err)
			}
			if identity != nil {
				c.Set(identityContextKey, identity)
			}
			return next(c)
		}
	}
}

// UserLoaderScope builds a fresh author loader for each request and
// discards it with the request, so no cached user survives into an
// unrelated request.
func UserLoaderScope(users repositories.IUserRepository, wait time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(userLoaderContextKey, loader.NewUserLoader(users, wait))
			return next(c)
		}
	}
}

func identityFrom(c echo.Context) *domain.Identity {
	identity, _ := c.Get(identityContextKey).(*domain.Identity)
	return identity
}

func userLoaderFrom(c echo.Context) *loader.UserLoader {
	l, _ := c.Get(userLoaderContextKey).(*loader.UserLoader)
	return l
}
