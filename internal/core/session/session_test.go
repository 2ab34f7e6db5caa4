package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/userdir/directory-system/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    "user_1",
		Email: "alice@example.com",
		Role:  domain.RoleModerator,
	}
}

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Read(token)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if claims.UserID != "user_1" {
		t.Fatalf("unexpected subject: %s", claims.UserID)
	}
	if claims.Role != domain.RoleModerator {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatal("expected iat and exp to be set")
	}
}

func TestManager_RoleFrozenAtIssuance(t *testing.T) {
	m := NewManager("secret", time.Hour)
	user := testUser()

	token, err := m.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Promoting the user after issuance must not affect the token.
	user.Role = domain.RoleAdmin

	claims, err := m.Read(token)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if claims.Role != domain.RoleModerator {
		t.Fatalf("expected role at issuance time, got %s", claims.Role)
	}
}

func TestManager_TamperedToken(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)

	if _, err := m.Read(strings.Join(parts, ".")); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestManager_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	reader := NewManager("secret-b", time.Hour)

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := reader.Read(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := m.Read(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestManager_RejectsForeignAlgorithm(t *testing.T) {
	m := NewManager("secret", time.Hour)

	// Same secret, different signing method: must still be rejected.
	claims := Claims{
		UserID: "user_1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Read(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestManager_MalformedToken(t *testing.T) {
	m := NewManager("secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, err := m.Read(token); err != domain.ErrUnauthorized {
			t.Fatalf("Read(%q): expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestManager_MissingSubject(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := Claims{
		Role: domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.Read(token); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
