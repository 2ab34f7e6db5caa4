package ports

import (
	"context"

	"github.com/userdir/directory-system/internal/core/domain"
)

// ListUsersFilter carries all query parameters for listing users.
type ListUsersFilter struct {
	Search string      // optional: case-insensitive substring on name or email
	Role   domain.Role // optional: exact role filter; empty = all roles
	Page   int         // 1-based
	Limit  int         // rows per page (capped at 100 by the service)
}

// UserRepository defines persistence operations for directory users.
// Create must enforce email uniqueness atomically: of N concurrent creates
// with the same email, exactly one succeeds and the rest return ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
	// List returns a page of users matching filter and the total match count.
	List(ctx context.Context, filter ListUsersFilter) ([]*domain.User, int64, error)
}
