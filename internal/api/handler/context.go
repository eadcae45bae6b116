package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/orderhub/platform/internal/api/middleware"
	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
)

// ctxIdentity extracts the identity injected by the authorization guard and
// fast-fails before any service call: a missing identity means the guard did
// not run or the token carried no subject — reject with 401 either way.
func ctxIdentity(c echo.Context) (auth.Identity, error) {
	identity, ok := c.Get(middleware.IdentityKey).(auth.Identity)
	if !ok || identity.UserID == "" {
		return auth.Identity{}, response.NewError(http.StatusUnauthorized, response.CodeAuthRequired, "missing authentication claims")
	}
	return identity, nil
}
