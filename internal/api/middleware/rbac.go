package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
)

// RequireRoles gates a route to identities carrying at least one of the given
// roles. Must run after the authorization guard.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get(IdentityKey).(auth.Identity)
			if !ok {
				return response.NewError(http.StatusUnauthorized, response.CodeAuthRequired, "missing authentication")
			}

			for _, role := range roles {
				if identity.HasRole(role) {
					return next(c)
				}
			}
			return response.NewError(http.StatusForbidden, response.CodeForbidden, "insufficient role")
		}
	}
}
