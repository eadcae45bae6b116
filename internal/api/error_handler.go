package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
	"github.com/orderhub/platform/internal/api/response"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Renders response.Error values as-is (status, code, message fixed by the caller).
//   - Maps known domain errors to their HTTP status and stable error code.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Always renders the uniform envelope.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, msg := resolveError(err, log, c)
		_ = response.Fail(c, status, code, msg)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string, string) {
	// Failures with a pre-assigned status and code (guard rejections,
	// rate limiting, upstream errors, login contract).
	var re *response.Error
	if errors.As(err, &re) {
		return re.Status, re.Code, re.Message
	}

	// Echo's own errors (404 from the router, proxy failures, etc.).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, statusCode(he.Code), fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic status and code.
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, response.CodeUserExists, "user already exists"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusBadRequest, response.CodeUserNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusForbidden, response.CodeInvalidCredentials, "invalid credentials"
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, response.CodeNotFound, "order not found"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, response.CodeForbidden, "access forbidden"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, response.CodeValidation, err.Error()
	case errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenSignature),
		errors.Is(err, auth.ErrTokenMalformed):
		return http.StatusForbidden, response.CodeAuthInvalidToken, "invalid token"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, response.CodeInternal, "internal server error"
}

// statusCode maps a bare HTTP status to the closest stable error code.
func statusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return response.CodeValidation
	case http.StatusUnauthorized:
		return response.CodeAuthRequired
	case http.StatusForbidden:
		return response.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return response.CodeNotFound
	case http.StatusTooManyRequests:
		return response.CodeRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return response.CodeUpstreamError
	default:
		return response.CodeInternal
	}
}
