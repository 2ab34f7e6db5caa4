package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/userdir/directory-system/internal/api/metrics"
	"github.com/userdir/directory-system/internal/core/domain"
)

// GateConfig describes how the request gate classifies paths.
//
// Classification resolves public routes by exact match first, then auth and
// admin routes by prefix, so a public path that is also the prefix of a
// protected one cannot expose it.
type GateConfig struct {
	// PublicRoutes are reachable without a session (exact match).
	PublicRoutes []string
	// AuthRoutes are login/register pages (prefix match); a logged-in user
	// is redirected away from them.
	AuthRoutes []string
	// AdminRoutes require an ADMIN session (prefix match).
	AdminRoutes []string
	// LoginPath is the redirect target for anonymous requests.
	LoginPath string
	// DashboardPath is the redirect target for re-login and denied admin
	// access.
	DashboardPath string
	// Skipper exempts a request from gating entirely (API surfaces answer
	// with JSON errors instead of redirects).
	Skipper func(c echo.Context) bool
}

// DefaultGateConfig mirrors the route classification of the web application:
// the landing, login and register pages are public, everything under
// /dashboard/users is admin-only, and the API, docs and probe surfaces are
// exempt from redirect handling.
func DefaultGateConfig() GateConfig {
	skipPrefixes := []string{"/auth/", "/api/", "/health", "/metrics", "/swagger"}
	return GateConfig{
		PublicRoutes:  []string{"/", "/login", "/register"},
		AuthRoutes:    []string{"/login", "/register"},
		AdminRoutes:   []string{"/dashboard/users"},
		LoginPath:     "/login",
		DashboardPath: "/dashboard",
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			for _, p := range skipPrefixes {
				if strings.HasPrefix(path, p) {
					return true
				}
			}
			return false
		},
	}
}

// Gate enforces the route-level access state machine. Evaluated in strict
// order per request:
//
//  1. an auth route with a session redirects to the dashboard
//  2. a protected route with no session redirects to login, preserving the
//     original path in a callbackUrl query parameter
//  3. an admin route without an ADMIN role redirects to the dashboard
//  4. anything else passes through unmodified
//
// Non-admins on an admin route land on their dashboard, not an error page.
func Gate(cfg GateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			path := c.Request().URL.Path
			claims, hasSession := ClaimsFrom(c)

			isPublic := containsExact(cfg.PublicRoutes, path)
			isAuth := hasAnyPrefix(cfg.AuthRoutes, path)
			isAdmin := hasAnyPrefix(cfg.AdminRoutes, path)

			if isAuth && hasSession {
				metrics.GateDecisionsTotal.WithLabelValues("dashboard_redirect").Inc()
				return c.Redirect(http.StatusFound, cfg.DashboardPath)
			}

			if !isPublic && !isAuth && !hasSession {
				metrics.GateDecisionsTotal.WithLabelValues("login_redirect").Inc()
				return c.Redirect(http.StatusFound, cfg.LoginPath+"?callbackUrl="+url.QueryEscape(path))
			}

			if isAdmin && (!hasSession || claims.Role != domain.RoleAdmin) {
				metrics.GateDecisionsTotal.WithLabelValues("dashboard_redirect").Inc()
				return c.Redirect(http.StatusFound, cfg.DashboardPath)
			}

			metrics.GateDecisionsTotal.WithLabelValues("allow").Inc()
			return next(c)
		}
	}
}

func containsExact(routes []string, path string) bool {
	for _, r := range routes {
		if path == r {
			return true
		}
	}
	return false
}

func hasAnyPrefix(routes []string, path string) bool {
	for _, r := range routes {
		if strings.HasPrefix(path, r) {
			return true
		}
	}
	return false
}
