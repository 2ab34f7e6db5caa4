package domain

import "errors"

// Sentinel errors matched with errors.Is across service, repository and
// transport layers.
var (
	// ErrInvalidCredentials is the only credential failure ever surfaced to
	// a client. Login collapses ErrUserNotFound and ErrNoPassword into it so
	// responses do not reveal whether an email is registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoPassword marks an externally-provisioned account with no stored
	// password hash. Internal only at login time; surfaced verbatim from
	// password change, where the caller already owns the account.
	ErrNoPassword = errors.New("account has no password credential")

	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("email already registered")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("insufficient permissions")
	ErrValidation      = errors.New("validation failed")
	ErrTooManyAttempts = errors.New("too many login attempts")
)
