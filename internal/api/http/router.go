package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Posts          *handlers.PostsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.Middleware
	AuthMode       config.AuthMode
}

// RegisterRoutes wires HTTP routes. Registration and login stay public;
// everything else sits behind the configured auth gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")
	api.Post("/users/register", cfg.Users.Register)
	api.Post("/users/login", cfg.Users.Login)

	var gate fiber.Handler
	switch cfg.AuthMode {
	case config.AuthModeBasic:
		gate = cfg.AuthMiddleware.Basic
	default:
		gate = cfg.AuthMiddleware.Bearer
	}

	protected := api.Group("", gate, auth.RequireIdentity())

	protected.Get("/users", cfg.Users.List)
	protected.Get("/users/:id", cfg.Users.Get)
	protected.Get("/users/:id/posts", cfg.Users.Posts)
	protected.Put("/users/:id", cfg.Users.Update)
	protected.Delete("/users/:id", cfg.Users.Delete)

	protected.Get("/posts", cfg.Posts.List)
	protected.Post("/posts", cfg.Posts.Create)
	protected.Get("/posts/:id", cfg.Posts.Get)
	protected.Put("/posts/:id", cfg.Posts.Update)
	protected.Delete("/posts/:id", cfg.Posts.Delete)

	protected.Get("/posts/:id/comments", cfg.Comments.ListByPost)
	protected.Post("/posts/:id/comments", cfg.Comments.Create)
	protected.Get("/comments/:id", cfg.Comments.Get)
	protected.Put("/comments/:id", cfg.Comments.Update)
	protected.Delete("/comments/:id", cfg.Comments.Delete)
}
