package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// RequirePermission returns a middleware enforcing that the
// authenticated user may perform action on resource. The user record
// is loaded fresh on every request so permission or role changes and
// deactivations take effect immediately, not at the next login. The
// decision itself is the pure model.HasPermission check: admins pass
// unconditionally, everyone else needs the matching flag in their
// permission map.
func RequirePermission(users *repository.UserRepo, resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := contextUserID(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, userID)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			if !u.IsActive {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account disabled"})
			}
			if !model.HasPermission(u.Role, u.Permissions, resource, action) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "You do not have permission to " + action + " " + resource,
				})
			}
			return next(c)
		}
	}
}

// contextUserID reads the user id stored by JWTAuth. JWT numeric
// claims decode as float64.
func contextUserID(c echo.Context) (uint64, error) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int64:
		return uint64(v), nil
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("missing user_id")
}
