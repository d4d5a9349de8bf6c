// Package router wires HTTP routes to handlers and middleware. All
// protected groups are built through the Authenticator, which guarantees
// authentication always runs before any role check.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iamsahan/threadly/internal/config"
	"github.com/iamsahan/threadly/internal/handler"
	"github.com/iamsahan/threadly/internal/middleware"
	"github.com/iamsahan/threadly/internal/model"
)

// Handlers bundles everything the router needs to register the API.
type Handlers struct {
	Auth         *handler.AuthHandler
	Products     *handler.ProductHandler
	Orders       *handler.OrderHandler
	Contacts     *handler.ContactHandler
	CustomOrders *handler.CustomOrderHandler
}

// Register mounts every route on e. Public catalog GETs sit behind the
// Redis response cache; everything under the protected groups passes
// Authenticate, with RequireRole layered on top for admin surfaces.
func Register(e *echo.Echo, h Handlers, auth *middleware.Authenticator, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Session lifecycle. Register/login/forgot/reset need no session;
	// update-password and me require one.
	a := e.Group("/v1/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.GET("/logout", h.Auth.Logout)
	a.POST("/forgot-password", h.Auth.ForgotPassword)
	a.PATCH("/reset-password/:token", h.Auth.ResetPassword)

	me := e.Group("/v1/auth", auth.Authenticate)
	me.PATCH("/update-password", h.Auth.UpdatePassword)
	me.GET("/me", h.Auth.Me)

	// Public storefront.
	cache := middleware.ResponseCache(cacheCfg, rdb)
	e.GET("/v1/products", h.Products.List, cache)
	e.GET("/v1/products/:id", h.Products.Get, cache)
	e.POST("/v1/contact", h.Contacts.Create)

	// Authenticated customers (any role).
	user := e.Group("/v1", auth.Authenticate, auth.RequireRole(model.RoleUser, model.RoleAdmin))
	user.POST("/orders", h.Orders.Create)
	user.GET("/orders", h.Orders.ListMine)
	user.POST("/custom-orders", h.CustomOrders.Create)
	user.GET("/custom-orders", h.CustomOrders.ListMine)

	// Admin surface.
	admin := e.Group("/v1/admin", auth.Authenticate, auth.RequireRole(model.RoleAdmin))
	admin.POST("/products", h.Products.Create)
	admin.PUT("/products/:id", h.Products.Update)
	admin.DELETE("/products/:id", h.Products.Delete)
	admin.GET("/orders", h.Orders.ListAll)
	admin.PATCH("/orders/:id/status", h.Orders.UpdateStatus)
	admin.GET("/contacts", h.Contacts.List)
	admin.DELETE("/contacts/:id", h.Contacts.Delete)
	admin.GET("/custom-orders", h.CustomOrders.ListAll)
	admin.PATCH("/custom-orders/:id/status", h.CustomOrders.UpdateStatus)
}
