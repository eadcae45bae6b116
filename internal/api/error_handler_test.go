package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
	"github.com/orderhub/platform/internal/core/domain"
)

func renderError(t *testing.T, err error) (int, response.Envelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return rec.Code, env
}

func TestErrorHandler_ResponseError(t *testing.T) {
	status, env := renderError(t, response.NewError(http.StatusUnauthorized, response.CodeAuthRequired, "authorization required"))

	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if env.Success || env.Error == nil {
		t.Fatalf("expected failure envelope")
	}
	if env.Error.Code != response.CodeAuthRequired || env.Error.Message != "authorization required" {
		t.Fatalf("unexpected error body: %+v", env.Error)
	}
}

func TestErrorHandler_DomainErrors(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUserExists, http.StatusBadRequest, response.CodeUserExists},
		{domain.ErrUserNotFound, http.StatusBadRequest, response.CodeUserNotFound},
		{domain.ErrInvalidCredentials, http.StatusForbidden, response.CodeInvalidCredentials},
		{domain.ErrOrderNotFound, http.StatusNotFound, response.CodeNotFound},
		{domain.ErrForbidden, http.StatusForbidden, response.CodeForbidden},
		{domain.ErrInvalidStatus, http.StatusBadRequest, response.CodeValidation},
		{auth.ErrTokenExpired, http.StatusForbidden, response.CodeAuthInvalidToken},
		{auth.ErrTokenSignature, http.StatusForbidden, response.CodeAuthInvalidToken},
		{auth.ErrTokenMalformed, http.StatusForbidden, response.CodeAuthInvalidToken},
	}

	for _, tc := range cases {
		status, env := renderError(t, tc.err)
		if status != tc.wantStatus || env.Error == nil || env.Error.Code != tc.wantCode {
			t.Fatalf("%v: expected %d %s, got %d %+v", tc.err, tc.wantStatus, tc.wantCode, status, env.Error)
		}
	}
}

func TestErrorHandler_WrappedDomainError(t *testing.T) {
	status, env := renderError(t, fmt.Errorf("find order: %w", domain.ErrOrderNotFound))

	if status != http.StatusNotFound || env.Error.Code != response.CodeNotFound {
		t.Fatalf("wrapped sentinel not resolved: %d %+v", status, env.Error)
	}
}

func TestErrorHandler_EchoHTTPError(t *testing.T) {
	status, env := renderError(t, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

	if status != http.StatusNotFound || env.Error.Code != response.CodeNotFound {
		t.Fatalf("expected 404 NOT_FOUND, got %d %+v", status, env.Error)
	}
}

func TestErrorHandler_UnknownError(t *testing.T) {
	status, env := renderError(t, errors.New("pool exhausted"))

	if status != http.StatusInternalServerError || env.Error.Code != response.CodeInternal {
		t.Fatalf("expected 500 INTERNAL, got %d %+v", status, env.Error)
	}
	if env.Error.Message == "pool exhausted" {
		t.Fatalf("internal detail leaked to the client")
	}
}
