package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userdir/directory-system/internal/api/metrics"
	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/ports"
	"github.com/userdir/directory-system/internal/core/session"
)

// SessionCookie is the cookie carrying the session token for page requests.
const SessionCookie = "session_token"

// claimsKey is the echo context key the verified claims are stored under.
const claimsKey = "session_claims"

// Session derives the caller's session from the session cookie or a bearer
// Authorization header and stores the verified claims in the request context.
// It never rejects a request: a missing, malformed, tampered or expired token
// simply leaves the request anonymous. Enforcement belongs to Gate,
// RequireRole, and the services.
func Session(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				metrics.SessionReadsTotal.WithLabelValues("absent").Inc()
				return next(c)
			}

			claims, err := sessions.Read(token)
			if err != nil {
				metrics.SessionReadsTotal.WithLabelValues("invalid").Inc()
				return next(c)
			}

			metrics.SessionReadsTotal.WithLabelValues("ok").Inc()
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

// ClaimsFrom returns the verified session claims, if any.
func ClaimsFrom(c echo.Context) (*session.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*session.Claims)
	return claims, ok && claims != nil
}

// ActorFrom converts the session claims into a service actor, failing with
// ErrUnauthorized when the request is anonymous.
func ActorFrom(c echo.Context) (ports.Actor, error) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return ports.Actor{}, domain.ErrUnauthorized
	}
	return ports.Actor{ID: claims.UserID, Role: claims.Role}, nil
}
