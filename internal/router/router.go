package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dkarimli/backoffice/internal/config"
	"github.com/dkarimli/backoffice/internal/handler"
	"github.com/dkarimli/backoffice/internal/middleware"
	"github.com/dkarimli/backoffice/internal/model"
	"github.com/dkarimli/backoffice/internal/repository"
)

// Handlers bundles every HTTP handler the API mounts. All fields are
// required.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Clients  *handler.ClientHandler
	Products *handler.ProductHandler
	Orders   *handler.OrderHandler
	Comments *handler.CommentHandler
}

// Register mounts all application routes on e.
//
// Unauthenticated endpoints: the health check and the /v1/auth group
// (register, login, refresh, logout). Everything else lives under /v1
// behind JWT authentication, with per-route permission checks loaded
// fresh from the users table on every request. Rate limiting is global;
// GET responses are cached per route once the permission check passed.
// Both degrade to no-ops when Redis is unavailable.
func Register(e *echo.Echo, cfg config.Config, h Handlers, users *repository.UserRepo, rdb *redis.Client) {
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Applied per-route AFTER the permission check, so a cache hit can
	// never skip authentication or authorization.
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", handler.Health)

	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/logout", h.Auth.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)

	// perm is shorthand for the permission middleware; the acting user
	// is reloaded per request so revocations apply immediately.
	perm := func(resource, action string) echo.MiddlewareFunc {
		return middleware.RequirePermission(users, resource, action)
	}

	auth.GET("/users", h.Users.List, perm(model.ResourceUsers, model.ActionView), cached)
	auth.GET("/users/:id", h.Users.Get, perm(model.ResourceUsers, model.ActionView), cached)
	auth.POST("/users", h.Users.Create, perm(model.ResourceUsers, model.ActionCreate))
	auth.PUT("/users/:id", h.Users.Update, perm(model.ResourceUsers, model.ActionUpdate))
	auth.DELETE("/users/:id", h.Users.Delete, perm(model.ResourceUsers, model.ActionDelete))

	auth.GET("/clients", h.Clients.List, perm(model.ResourceClients, model.ActionView), cached)
	auth.GET("/clients/:id", h.Clients.Get, perm(model.ResourceClients, model.ActionView), cached)
	auth.POST("/clients", h.Clients.Create, perm(model.ResourceClients, model.ActionCreate))
	auth.PUT("/clients/:id", h.Clients.Update, perm(model.ResourceClients, model.ActionUpdate))
	auth.DELETE("/clients/:id", h.Clients.Delete, perm(model.ResourceClients, model.ActionDelete))

	auth.GET("/products", h.Products.List, perm(model.ResourceProducts, model.ActionView), cached)
	auth.GET("/products/:id", h.Products.Get, perm(model.ResourceProducts, model.ActionView), cached)
	auth.POST("/products", h.Products.Create, perm(model.ResourceProducts, model.ActionCreate))
	auth.PUT("/products/:id", h.Products.Update, perm(model.ResourceProducts, model.ActionUpdate))
	auth.DELETE("/products/:id", h.Products.Delete, perm(model.ResourceProducts, model.ActionDelete))

	auth.GET("/orders", h.Orders.List, perm(model.ResourceOrders, model.ActionView), cached)
	auth.GET("/orders/:id", h.Orders.Get, perm(model.ResourceOrders, model.ActionView), cached)
	auth.POST("/orders", h.Orders.Create, perm(model.ResourceOrders, model.ActionCreate))
	auth.PUT("/orders/:id", h.Orders.Update, perm(model.ResourceOrders, model.ActionUpdate))
	auth.DELETE("/orders/:id", h.Orders.Delete, perm(model.ResourceOrders, model.ActionDelete))

	auth.GET("/comments", h.Comments.List, perm(model.ResourceComments, model.ActionView), cached)
	auth.GET("/comments/:id", h.Comments.Get, perm(model.ResourceComments, model.ActionView), cached)
	auth.POST("/comments", h.Comments.Create, perm(model.ResourceComments, model.ActionCreate))
	auth.PUT("/comments/:id", h.Comments.Update, perm(model.ResourceComments, model.ActionUpdate))
	auth.DELETE("/comments/:id", h.Comments.Delete, perm(model.ResourceComments, model.ActionDelete))
}
