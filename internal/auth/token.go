package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of issued tokens. A policy constant, not tunable
// per call.
const TokenTTL = 2 * time.Hour

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("token signature invalid")
)

// Claims is the JWT payload. The user id travels in the registered Subject
// claim; email and roles are custom claims.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates a bearer token and reconstructs the identity it carries.
// Each service instantiates its own verifier against the shared secret; no
// service trusts a peer's claim that a token was already checked.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// Service issues and verifies HS256-signed bearer tokens. The secret is
// injected once at construction and never mutated.
type Service struct {
	secret []byte
}

func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue signs a token carrying the identity, valid for ttl from now.
// A non-positive ttl falls back to TokenTTL.
func (s *Service) Issue(id Identity, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = TokenTTL
	}

	now := time.Now()
	claims := Claims{
		Email: id.Email,
		Roles: id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded identity.
// Failures map to ErrTokenExpired, ErrTokenSignature or ErrTokenMalformed;
// the distinction matters for logs and metrics only, the HTTP boundary
// collapses all three into one "invalid token" outcome.
func (s *Service) Verify(token string) (Identity, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, ErrTokenSignature
		default:
			return Identity{}, ErrTokenMalformed
		}
	}
	if !tkn.Valid {
		return Identity{}, ErrTokenMalformed
	}

	return Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, nil
}
