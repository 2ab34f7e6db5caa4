package ports

import (
	"context"

	"github.com/userdir/directory-system/internal/core/domain"
)

// Actor identifies the authenticated caller of a privileged operation, as
// derived from verified session claims.
type Actor struct {
	ID   string
	Role domain.Role
}

// UserPage is one page of a user listing.
type UserPage struct {
	Users      []*domain.User `json:"data"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// UpdateUserInput carries a partial user update; nil fields are untouched.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *domain.Role
}

// UserService implements the privileged directory operations. Every method
// authorizes the actor itself and fails closed on denial.
type UserService interface {
	// List requires at least MODERATOR (hierarchy check).
	List(ctx context.Context, actor Actor, filter ListUsersFilter) (*UserPage, error)

	// Get returns a user: callers may fetch themselves, anyone else requires
	// at least MODERATOR.
	Get(ctx context.Context, actor Actor, id string) (*domain.User, error)

	// Update applies a partial update, governed by the users/update
	// allow-list entry. The role field additionally requires ADMIN.
	Update(ctx context.Context, actor Actor, id string, input UpdateUserInput) (*domain.User, error)

	// UpdateRole requires ADMIN and a role from the closed set.
	UpdateRole(ctx context.Context, actor Actor, id string, role domain.Role) error

	// Delete is governed by the users/delete allow-list entry; deleting the
	// acting account is forbidden.
	Delete(ctx context.Context, actor Actor, id string) error
}
