// Package auth holds the trust boundary shared by every service: the JWT
// token service, the identity carried inside a verified token, and the
// role/ownership access policy.
//
// Tokens cannot be revoked before expiry; a password change does not
// invalidate previously issued tokens.
package auth

import "github.com/orderhub/platform/internal/core/domain"

// Identity is the decoded payload of a verified bearer token. It lives for
// the duration of a single request and is never persisted.
type Identity struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role string) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.HasRole(domain.RoleAdmin)
}
