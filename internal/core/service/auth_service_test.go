package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/ports"
	"github.com/userdir/directory-system/internal/core/session"
)

// stubUserRepo is an in-memory UserRepository. Create enforces email
// uniqueness under a mutex, mirroring the unique index of the real store.
type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User // keyed by id
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}

	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("u%d", r.seq)
	r.users[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.User
	search := strings.ToLower(filter.Search)
	for _, u := range r.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		matched = append(matched, cloneUser(u))
	}

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// stubAuditSink collects recorded entries.
type stubAuditSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (s *stubAuditSink) Record(entry domain.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

func (s *stubAuditSink) byAction(action domain.AuditAction) []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.AuditEntry
	for _, e := range s.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// stubThrottle denies once failures reach max.
type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Allow(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[email] < t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	return nil
}

func newTestAuthService(repo *stubUserRepo) (*AuthService, *session.Manager) {
	sessions := session.NewManager("test-secret", time.Hour)
	svc := NewAuthService(repo, sessions, 12, zerolog.Nop())
	return svc, sessions
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role USER, got %s", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked in returned user")
	}

	stored, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("stored user not found: %v", err)
	}
	if stored.PasswordHash == "secret123" || stored.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	cases := []ports.RegisterInput{
		{Name: "", Email: "a@example.com", Password: "secret123"},
		{Name: "A", Email: "", Password: "secret123"},
		{Name: "A", Email: "a@example.com", Password: ""},
	}
	for _, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", input, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	input := ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret123"}
	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentSameEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(context.Background(), ports.RegisterInput{
				Name:     "Racer",
				Email:    "race@example.com",
				Password: "secret123",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, conflicts := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrUserExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly 1 success and %d conflicts, got %d/%d", attempts-1, successes, conflicts)
	}
}

func TestAuthService_Verify_DistinguishesFailures(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Carol", Email: "carol@example.com", Password: "goodpass1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	// Externally-provisioned account: no password hash.
	if _, err := repo.Create(context.Background(), &domain.User{
		Email: "oauth@example.com", Name: "OAuth Only", Role: domain.RoleUser,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Verify(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "oauth@example.com", "whatever"); !errors.Is(err, domain.ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
	if _, err := svc.Verify(context.Background(), "carol@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if user, err := svc.Verify(context.Background(), "CAROL@example.com", "goodpass1"); err != nil || user.Email != "carol@example.com" {
		t.Fatalf("expected case-insensitive success, got %v / %+v", err, user)
	}
}

func TestAuthService_Login_CollapsesFailureReasons(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Dave", Email: "dave@example.com", Password: "goodpass1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := repo.Create(context.Background(), &domain.User{
		Email: "ext@example.com", Role: domain.RoleUser,
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Unknown email, password-less account, and bad password must all look
	// identical to the caller.
	for _, c := range []struct{ email, password string }{
		{"ghost@example.com", "whatever"},
		{"ext@example.com", "whatever"},
		{"dave@example.com", "badpass"},
	} {
		if _, _, err := svc.Login(context.Background(), c.email, c.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login(%s): expected ErrInvalidCredentials, got %v", c.email, err)
		}
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc, sessions := newTestAuthService(repo)
	audit := &stubAuditSink{}
	svc.WithAudit(audit)

	registered, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Erin", Email: "erin@example.com", Password: "s3cretpass",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "Erin@Example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected token, got empty")
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked in login response")
	}

	claims, err := sessions.Read(token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != registered.ID {
		t.Fatalf("claims subject %s, want %s", claims.UserID, registered.ID)
	}
	if claims.Role != domain.RoleUser {
		t.Fatalf("claims role %s, want USER", claims.Role)
	}

	if got := audit.byAction(domain.AuditLoginSucceeded); len(got) != 1 {
		t.Fatalf("expected 1 login_succeeded audit entry, got %d", len(got))
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)
	throttle := newStubThrottle(3)
	svc.WithThrottle(throttle)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Frank", Email: "frank@example.com", Password: "goodpass1",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Login(context.Background(), "frank@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Fourth attempt is blocked even with the right password.
	if _, _, err := svc.Login(context.Background(), "frank@example.com", "goodpass1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Grace", Email: "grace@example.com", Password: "oldpass12",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "wrongpass", "newpass12"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "oldpass12", "newpass12"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "grace@example.com", "oldpass12"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "grace@example.com", "newpass12"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestAuthService_ChangePassword_NoCredential(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	created, err := repo.Create(context.Background(), &domain.User{
		Email: "ext2@example.com", Role: domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), created.ID, "anything", "newpass12"); !errors.Is(err, domain.ErrNoPassword) {
		t.Fatalf("expected ErrNoPassword, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := newTestAuthService(repo)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Heidi", Email: "heidi@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.UpdateProfile(context.Background(), user.ID, "Heidi Renamed")
	if err != nil {
		t.Fatalf("update profile failed: %v", err)
	}
	if updated.Name != "Heidi Renamed" {
		t.Fatalf("unexpected name: %s", updated.Name)
	}

	if _, err := svc.UpdateProfile(context.Background(), user.ID, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
