package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gallery-service/internal/api/http/handlers"
	"github.com/spec-kit/gallery-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Albums            *handlers.AlbumsHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Session resolution (including transparent access-token renewal) runs
	// on every /auth route; RequireAdmin gates the protected subset.
	authGroup := app.Group("/auth", cfg.SessionMiddleware.Handle)
	authGroup.Post("/setup", cfg.Auth.Setup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := authGroup.Group("", auth.RequireAdmin())
	protected.Get("/me", cfg.Auth.Me)
	protected.Post("/password/change", cfg.Auth.ChangePassword)
	protected.Post("/password/set", cfg.Auth.SetPassword)

	albums := app.Group("/albums")
	albums.Post("/:slug/unlock", cfg.Albums.Unlock)
	albums.Get("/:slug/access", cfg.Albums.Access)
	albums.Post("/:slug/lock", cfg.Albums.Lock)
}
