package ports

import (
	"context"

	"github.com/userdir/directory-system/internal/core/domain"
)

// RegisterInput carries a self-service registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthService implements credential verification and the account operations a
// user performs on itself.
type AuthService interface {
	// Verify checks an email/password pair and returns the matching user on
	// success. Failure reasons stay distinguishable (ErrUserNotFound,
	// ErrNoPassword, ErrInvalidCredentials) for logging and tests; Login is
	// the layer that collapses them.
	Verify(ctx context.Context, email, password string) (*domain.User, error)

	// Register creates a new USER-role account with a hashed password.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Login verifies credentials and issues a session token. Any credential
	// failure surfaces as ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// UpdateProfile changes the display name of the calling user.
	UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error)

	// ChangePassword re-verifies currentPassword before storing a new hash.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}
