package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/ports"
	"github.com/userdir/directory-system/internal/core/rbac"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// UserService implements the privileged directory operations. Authorization
// is enforced here, not only in middleware, so a miswired route still denies.
type UserService struct {
	repo   ports.UserRepository
	cost   int
	logger zerolog.Logger
	audit  ports.AuditSink // optional
}

func NewUserService(repo ports.UserRepository, cost int, logger zerolog.Logger) *UserService {
	if cost < minBcryptCost {
		cost = minBcryptCost
	}
	return &UserService{repo: repo, cost: cost, logger: logger}
}

// WithAudit enables asynchronous audit recording.
func (s *UserService) WithAudit(a ports.AuditSink) *UserService {
	s.audit = a
	return s
}

// List returns a page of users. Requires at least MODERATOR.
func (s *UserService) List(ctx context.Context, actor ports.Actor, filter ports.ListUsersFilter) (*ports.UserPage, error) {
	if err := rbac.RequireRole(actor.Role, domain.RoleModerator); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, filter.Role)
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i, u := range users {
		users[i] = u.Public()
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.UserPage{
		Users:      users,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get returns one user. Callers may fetch themselves; anyone else requires at
// least MODERATOR.
func (s *UserService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	if actor.ID != id {
		if err := rbac.RequireRole(actor.Role, domain.RoleModerator); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// Update applies a partial update to a user, governed by the users/update
// allow-list entry. A role change inside the payload additionally requires
// ADMIN and is ignored otherwise, mirroring the field-level rule of the
// original admin API.
func (s *UserService) Update(ctx context.Context, actor ports.Actor, id string, input ports.UpdateUserInput) (*domain.User, error) {
	if !rbac.CanAccess(actor.Role, "users", "update") {
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email must not be empty", domain.ErrValidation)
		}
		user.Email = email
	}
	if input.Password != nil && *input.Password != "" {
		hash, herr := bcrypt.GenerateFromPassword([]byte(*input.Password), s.cost)
		if herr != nil {
			return nil, herr
		}
		user.PasswordHash = string(hash)
	}
	if input.Role != nil && rbac.HasRole(actor.Role, domain.RoleAdmin) {
		if !input.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
		}
		if user.Role != *input.Role {
			s.record(domain.AuditEntry{
				Action:   domain.AuditRoleChanged,
				ActorID:  actor.ID,
				TargetID: user.ID,
				Detail:   fmt.Sprintf("%s -> %s", user.Role, *input.Role),
			})
		}
		user.Role = *input.Role
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateRole sets a user's role. Requires ADMIN; the role must be a member of
// the closed set. Tokens already issued to the target keep their old role
// until they expire or the target logs in again.
func (s *UserService) UpdateRole(ctx context.Context, actor ports.Actor, id string, role domain.Role) error {
	if err := rbac.RequireRole(actor.Role, domain.RoleAdmin); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return err
	}

	s.record(domain.AuditEntry{
		Action:   domain.AuditRoleChanged,
		ActorID:  actor.ID,
		TargetID: id,
		Detail:   string(role),
	})
	s.logger.Info().Str("actor_id", actor.ID).Str("target_id", id).Str("role", string(role)).Msg("role updated")
	return nil
}

// Delete removes a user, governed by the users/delete allow-list entry.
// Deleting the acting account is forbidden.
func (s *UserService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if !rbac.CanAccess(actor.Role, "users", "delete") {
		return domain.ErrForbidden
	}
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete your own account", domain.ErrValidation)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.record(domain.AuditEntry{
		Action:   domain.AuditUserDeleted,
		ActorID:  actor.ID,
		TargetID: id,
	})
	s.logger.Info().Str("actor_id", actor.ID).Str("target_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) record(entry domain.AuditEntry) {
	if s.audit != nil {
		s.audit.Record(entry)
	}
}
