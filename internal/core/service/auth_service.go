package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/ports"
	"github.com/userdir/directory-system/internal/core/session"
)

// minBcryptCost is the floor for password hashing. Configured values below it
// are raised, never honored.
const minBcryptCost = 12

// AuthService implements registration, login and self-service account
// operations.
type AuthService struct {
	repo     ports.UserRepository
	sessions *session.Manager
	cost     int
	logger   zerolog.Logger
	throttle ports.LoginThrottle // optional
	audit    ports.AuditSink     // optional
}

func NewAuthService(repo ports.UserRepository, sessions *session.Manager, cost int, logger zerolog.Logger) *AuthService {
	if cost < minBcryptCost {
		cost = minBcryptCost
	}
	return &AuthService{repo: repo, sessions: sessions, cost: cost, logger: logger}
}

// WithThrottle enables per-email failed-login throttling.
func (s *AuthService) WithThrottle(t ports.LoginThrottle) *AuthService {
	s.throttle = t
	return s
}

// WithAudit enables asynchronous audit recording.
func (s *AuthService) WithAudit(a ports.AuditSink) *AuthService {
	s.audit = a
	return s
}

// NormalizeEmail lowercases and trims an email so lookups are
// case-insensitive against the normalized stored value.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verify checks an email/password pair. The returned errors stay
// distinguishable here; only Login collapses them toward the client.
func (s *AuthService) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrNoPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and issues a session token embedding the user's
// current role. Every credential failure surfaces as ErrInvalidCredentials so
// responses do not reveal whether the email is registered; the real reason is
// logged and audited.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = NormalizeEmail(email)

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// Throttle backend down: fail closed for logins.
			s.logger.Error().Err(err).Msg("login throttle unavailable")
			return "", nil, domain.ErrTooManyAttempts
		}
		if !allowed {
			s.logger.Warn().Str("email", email).Msg("login throttled")
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.Verify(ctx, email, password)
	if err != nil {
		s.loginFailed(ctx, email, err)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(user)
	if err != nil {
		return "", nil, err
	}

	if s.throttle != nil {
		if rerr := s.throttle.Reset(ctx, email); rerr != nil {
			s.logger.Warn().Err(rerr).Msg("throttle reset failed")
		}
	}
	s.record(domain.AuditEntry{
		Action:     domain.AuditLoginSucceeded,
		ActorID:    user.ID,
		ActorEmail: user.Email,
	})
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login succeeded")

	return token, user.Public(), nil
}

func (s *AuthService) loginFailed(ctx context.Context, email string, cause error) {
	reason := "bad_password"
	switch {
	case errors.Is(cause, domain.ErrUserNotFound):
		reason = "unknown_email"
	case errors.Is(cause, domain.ErrNoPassword):
		reason = "no_password_credential"
	}
	s.logger.Warn().Str("email", email).Str("reason", reason).Msg("login failed")

	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("throttle record failed")
		}
	}
	s.record(domain.AuditEntry{
		Action:     domain.AuditLoginFailed,
		ActorEmail: email,
		Detail:     reason,
	})
}

// Register creates a new account with the default USER role. Email uniqueness
// is enforced by the repository's unique index, so concurrent registrations
// of the same email yield exactly one success.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(input.Email)
	if input.Name == "" || email == "" || input.Password == "" {
		return nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.record(domain.AuditEntry{
		Action:     domain.AuditUserRegistered,
		ActorID:    created.ID,
		ActorEmail: created.Email,
	})
	s.logger.Info().Str("user_id", created.ID).Msg("user registered")

	return created.Public(), nil
}

// UpdateProfile changes the caller's display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	if name == "" {
		return nil, domain.ErrValidation
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// ChangePassword re-verifies the current password before storing a new hash.
// Accounts without a password credential cannot set one here.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return domain.ErrValidation
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == "" {
		return domain.ErrNoPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *AuthService) record(entry domain.AuditEntry) {
	if s.audit != nil {
		s.audit.Record(entry)
	}
}
