package auth

// CanAccess implements the owner-or-admin policy: the identity may operate on
// a resource when it owns the resource or carries the admin role. Pure and
// safe for concurrent use.
func CanAccess(id Identity, ownerID string) bool {
	return id.UserID == ownerID || id.IsAdmin()
}
