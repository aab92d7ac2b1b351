package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/elijahnzeli1/smartnote-backend/store"
)

const userContextKey = "auth.user"

// Middleware resolves the Authorization bearer token and stores the user
// in the echo context. Requests without a valid token get 401.
func (s *Service) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearer(c.Request().Header.Get("Authorization"))
			user, err := s.Authenticate(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// UserFrom returns the authenticated user set by Middleware, or nil.
func UserFrom(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

func extractBearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}
