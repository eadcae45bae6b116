package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/orderhub/platform/internal/api/metrics"
	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
)

// IdentityKey is the echo context key under which the guard stores the
// verified auth.Identity.
const IdentityKey = "identity"

// bearerPrefix is the only accepted header shape: the literal scheme token
// followed by a single space and a non-empty credential.
const bearerPrefix = "Bearer "

// AuthConfig configures the authorization guard.
type AuthConfig struct {
	// Verifier validates bearer tokens. Required.
	Verifier auth.Verifier
	// Skipper bypasses the guard for public paths. Optional.
	Skipper func(echo.Context) bool
}

// Auth returns the authorization guard with no skipper: every request must
// present a valid bearer token.
func Auth(verifier auth.Verifier) echo.MiddlewareFunc {
	return AuthWithConfig(AuthConfig{Verifier: verifier})
}

// AuthWithConfig returns the authorization guard middleware. Per request:
//
//	no Authorization header        → 401 AUTH_REQUIRED
//	header not "Bearer <token>"    → 401 AUTH_INVALID
//	token fails verification       → 403 AUTH_INVALID_TOKEN
//	verified                       → identity attached, request proceeds
func AuthWithConfig(cfg AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return response.NewError(http.StatusUnauthorized, response.CodeAuthRequired, "missing authorization header")
			}

			token, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || token == "" || strings.ContainsRune(token, ' ') {
				return response.NewError(http.StatusUnauthorized, response.CodeAuthInvalid, "invalid authorization header")
			}

			identity, err := cfg.Verifier.Verify(token)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
				return response.NewError(http.StatusForbidden, response.CodeAuthInvalidToken, "invalid token")
			}
			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()

			c.Set(IdentityKey, identity)
			return next(c)
		}
	}
}

func verifyResult(err error) string {
	switch err {
	case auth.ErrTokenExpired:
		return "expired"
	case auth.ErrTokenSignature:
		return "bad_signature"
	default:
		return "malformed"
	}
}
