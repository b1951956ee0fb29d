package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/defm/console/internal/core/domain"
	"github.com/defm/console/internal/core/ports"
)

// Context keys set by Auth.
const (
	UserKey = "user"
	RoleKey = "role"
)

// Auth resolves the bearer token to an active user and injects it into the
// context under UserKey, with its role under RoleKey.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized(c, "Not authenticated")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return unauthorized(c, "Not authenticated")
			}

			user, err := auth.Authenticate(c.Request().Context(), parts[1])
			if errors.Is(err, domain.ErrInactiveUser) {
				return echo.NewHTTPError(http.StatusBadRequest, "Inactive user")
			}
			if err != nil {
				return unauthorized(c, "Could not validate credentials")
			}

			c.Set(UserKey, user)
			c.Set(RoleKey, user.Role)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, msg)
}
