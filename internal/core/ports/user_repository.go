package ports

import (
	"context"

	"github.com/orderhub/platform/internal/core/domain"
)

// ListUsersFilter carries the query parameters for listing users.
// Page and Limit are assumed pre-clamped by the service layer.
type ListUsersFilter struct {
	Email string // optional: substring match on email
	Page  int    // 1-based
	Limit int    // rows per page
}

// UserRepository defines persistence operations for user accounts.
// The store enforces email uniqueness; Create surfaces a violation as
// domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	// List returns a page of users ordered newest-first and the total count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
