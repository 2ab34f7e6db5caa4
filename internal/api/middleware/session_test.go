package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/session"
)

func issueToken(t *testing.T, m *session.Manager, role domain.Role) string {
	t.Helper()
	token, err := m.Issue(&domain.User{ID: "u1", Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func runSession(t *testing.T, m *session.Manager, req *http.Request) echo.Context {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := Session(m)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("session middleware error: %v", err)
	}
	return c
}

func TestSession_FromCookie(t *testing.T) {
	m := session.NewManager("secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: issueToken(t, m, domain.RoleAdmin)})

	c := runSession(t, m, req)

	claims, ok := ClaimsFrom(c)
	if !ok {
		t.Fatal("expected claims in context")
	}
	if claims.UserID != "u1" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSession_FromBearerHeader(t *testing.T) {
	m := session.NewManager("secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+issueToken(t, m, domain.RoleUser))

	c := runSession(t, m, req)

	actor, err := ActorFrom(c)
	if err != nil {
		t.Fatalf("expected actor, got %v", err)
	}
	if actor.ID != "u1" || actor.Role != domain.RoleUser {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestSession_AnonymousWithoutToken(t *testing.T) {
	m := session.NewManager("secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	c := runSession(t, m, req)

	if _, ok := ClaimsFrom(c); ok {
		t.Fatal("expected no claims")
	}
	if _, err := ActorFrom(c); err != domain.ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSession_InvalidTokenTreatedAsAnonymous(t *testing.T) {
	m := session.NewManager("secret", time.Hour)
	other := session.NewManager("other-secret", time.Hour)

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": issueToken(t, other, domain.RoleAdmin),
	}
	for name, token := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

		c := runSession(t, m, req)

		if _, ok := ClaimsFrom(c); ok {
			t.Fatalf("%s: expected no claims", name)
		}
	}
}

func TestSession_MalformedAuthorizationHeader(t *testing.T) {
	m := session.NewManager("secret", time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")

	c := runSession(t, m, req)

	if _, ok := ClaimsFrom(c); ok {
		t.Fatal("expected no claims for non-bearer scheme")
	}
}
