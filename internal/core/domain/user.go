package domain

import "time"

// User models a registered account in the directory.
//
// PasswordHash is empty for externally-provisioned accounts; such accounts
// cannot log in with credentials or change a password.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name,omitempty"`
	Image         string     `json:"image,omitempty"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	EmailVerified *time.Time `json:"email_verified,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Public returns a copy of the user with the password hash cleared, safe to
// hand to transport layers even if a json tag regresses.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
