package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/rbac"
)

// RequireRole rejects requests whose session does not satisfy the required
// minimum role: 401 without a session, 403 with one below the requirement.
// Services re-check authorization themselves; this middleware just keeps the
// denial out of the handler bodies.
func RequireRole(required domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return domain.ErrUnauthorized
			}
			if err := rbac.RequireRole(claims.Role, required); err != nil {
				return err
			}
			return next(c)
		}
	}
}
