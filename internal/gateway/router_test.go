package gateway

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/orderhub/platform/internal/api/response"
	"github.com/orderhub/platform/internal/auth"
)

// backendRecorder is a stand-in backend that records the headers of the last
// request it received.
type backendRecorder struct {
	mu   sync.Mutex
	last http.Header
}

func (b *backendRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.last = r.Header.Clone()
		b.mu.Unlock()
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	})
}

func (b *backendRecorder) lastHeader() http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// The prometheus middleware registers collectors in the process-wide default
// registry, so the router is built once and shared by every test.
var (
	gwOnce  sync.Once
	gwEcho  *echo.Echo
	gwUsers *backendRecorder
)

func setupGateway(t *testing.T) (*echo.Echo, *backendRecorder) {
	t.Helper()
	gwOnce.Do(func() {
		gwUsers = &backendRecorder{}
		usersSrv := httptest.NewServer(gwUsers.handler())
		userURL, err := url.Parse(usersSrv.URL)
		if err != nil {
			t.Fatalf("parse users url: %v", err)
		}

		// The orders backend is deliberately dead: grab a free port and
		// release it so connections are refused.
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("reserve port: %v", err)
		}
		deadAddr := ln.Addr().String()
		_ = ln.Close()
		orderURL, err := url.Parse("http://" + deadAddr)
		if err != nil {
			t.Fatalf("parse orders url: %v", err)
		}

		// Unreachable counter store: the limiter fails open.
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 100 * time.Millisecond,
			MaxRetries:  -1,
		})

		gwEcho = NewRouter(Config{
			UserServiceURL:  userURL,
			OrderServiceURL: orderURL,
			RateLimit:       1000,
			RateLimitWindow: time.Minute,
		}, "secret", rdb, zerolog.Nop())
	})
	return gwEcho, gwUsers
}

func issueToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := auth.NewService(secret).Issue(auth.Identity{
		UserID: "u1",
		Email:  "alice@example.com",
		Roles:  []string{"user"},
	}, auth.TokenTTL)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func gatewayDo(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if env.Success || env.Error == nil {
		t.Fatalf("expected failure envelope, got %s", rec.Body.String())
	}
	return env
}

func TestGateway_PublicLoginForwardsWithoutToken(t *testing.T) {
	e, users := setupGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/users/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from backend, got %d: %s", rec.Code, rec.Body.String())
	}

	h := users.lastHeader()
	if h.Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("expected a request id on the forwarded request")
	}
	if h.Get(HeaderUserID) != "" {
		t.Fatalf("unauthenticated request must carry no identity header")
	}
}

func TestGateway_StripsSpoofedIdentityHeaders(t *testing.T) {
	e, users := setupGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/users/register",
		strings.NewReader(`{"email":"a@b.com","password":"secret1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(HeaderUserID, "evil")
	req.Header.Set(HeaderUserRoles, "admin")

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	h := users.lastHeader()
	if h.Get(HeaderUserID) != "" || h.Get(HeaderUserRoles) != "" {
		t.Fatalf("spoofed identity headers must be stripped, backend saw %q/%q",
			h.Get(HeaderUserID), h.Get(HeaderUserRoles))
	}
}

func TestGateway_ProtectedPathWithoutToken(t *testing.T) {
	e, _ := setupGateway(t)

	rec := gatewayDo(e, httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	env := decodeErrorEnvelope(t, rec)
	if env.Error.Code != response.CodeAuthRequired {
		t.Fatalf("expected AUTH_REQUIRED, got %s", env.Error.Code)
	}
}

func TestGateway_MalformedAuthHeader(t *testing.T) {
	e, _ := setupGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "bearer lowercase-scheme")

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	env := decodeErrorEnvelope(t, rec)
	if env.Error.Code != response.CodeAuthInvalid {
		t.Fatalf("expected AUTH_INVALID, got %s", env.Error.Code)
	}
}

func TestGateway_RejectsForeignToken(t *testing.T) {
	e, _ := setupGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "other-secret"))

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	env := decodeErrorEnvelope(t, rec)
	if env.Error.Code != response.CodeAuthInvalidToken {
		t.Fatalf("expected AUTH_INVALID_TOKEN, got %s", env.Error.Code)
	}
}

func TestGateway_ForwardsVerifiedIdentity(t *testing.T) {
	e, users := setupGateway(t)
	token := issueToken(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	// A spoofed inbound role header must be replaced by the verified claims.
	req.Header.Set(HeaderUserRoles, "admin")

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	h := users.lastHeader()
	if h.Get(HeaderUserID) != "u1" {
		t.Fatalf("expected X-User-ID u1, got %q", h.Get(HeaderUserID))
	}
	if h.Get(HeaderUserEmail) != "alice@example.com" {
		t.Fatalf("expected X-User-Email, got %q", h.Get(HeaderUserEmail))
	}
	if h.Get(HeaderUserRoles) != "user" {
		t.Fatalf("expected X-User-Roles user, got %q", h.Get(HeaderUserRoles))
	}
	if h.Get("Authorization") != "Bearer "+token {
		t.Fatalf("authorization header must be forwarded unchanged")
	}
}

func TestGateway_ReusesInboundRequestID(t *testing.T) {
	e, users := setupGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/users/login",
		strings.NewReader(`{"email":"a@b.com","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRequestID, "req-123")

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := users.lastHeader().Get(echo.HeaderXRequestID); got != "req-123" {
		t.Fatalf("expected forwarded request id req-123, got %q", got)
	}
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "req-123" {
		t.Fatalf("expected response request id req-123, got %q", got)
	}
}

func TestGateway_HealthServedLocally(t *testing.T) {
	e, _ := setupGateway(t)

	rec := gatewayDo(e, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestGateway_UpstreamError(t *testing.T) {
	e, _ := setupGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "secret"))

	rec := gatewayDo(e, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeErrorEnvelope(t, rec)
	if env.Error.Code != response.CodeUpstreamError {
		t.Fatalf("expected UPSTREAM_ERROR, got %s", env.Error.Code)
	}
}
