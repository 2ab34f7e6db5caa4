package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/userdir/directory-system/docs"
	"github.com/userdir/directory-system/internal/api/handler"
	"github.com/userdir/directory-system/internal/api/middleware"
	"github.com/userdir/directory-system/internal/core/domain"
	"github.com/userdir/directory-system/internal/core/ports"
	"github.com/userdir/directory-system/internal/core/session"
)

// RouterConfig carries the wired dependencies for the HTTP surface.
type RouterConfig struct {
	Sessions    *session.Manager
	AuthService ports.AuthService
	UserService ports.UserService
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// The request gate only governs page routes; the /auth and /api surfaces are
// exempted by the gate's skipper and answer with JSON errors instead of
// redirects.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("directory"))
	e.Use(middleware.Session(cfg.Sessions))
	e.Use(middleware.Gate(middleware.DefaultGateConfig()))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Sessions.TTL())
	profileHandler := handler.NewProfileHandler(cfg.AuthService, cfg.UserService)
	userHandler := handler.NewUserHandler(cfg.UserService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Self-service profile routes ---
	me := e.Group("/api/me")
	me.GET("", profileHandler.Me)
	me.PATCH("", profileHandler.UpdateProfile)
	me.POST("/password", profileHandler.ChangePassword)

	// --- Privileged user directory routes ---
	// Listing is hierarchy-gated here; Get, Update and Delete authorize in
	// the service layer (self-access and allow-list rules the middleware
	// cannot express).
	users := e.Group("/api/users")
	users.GET("", userHandler.List, middleware.RequireRole(domain.RoleModerator))
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.PUT("/:id/role", userHandler.UpdateRole, middleware.RequireRole(domain.RoleAdmin))
	users.DELETE("/:id", userHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
