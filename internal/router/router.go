// Package router maps HTTP routes onto handlers and wires the middleware
// chain for each group.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/expomatch/server/internal/config"
	"github.com/expomatch/server/internal/handler"
	"github.com/expomatch/server/internal/middleware"
	"github.com/expomatch/server/internal/model"
)

// Handlers collects everything RegisterRoutes needs.
type Handlers struct {
	Auth   *handler.AuthHandler
	Events *handler.EventHandler
	Apps   *handler.ApplicationHandler
	Upload *handler.UploadHandler
}

// RegisterRoutes sets up the whole route table. Public reads carry the
// Redis response cache; everything passes the rate limiter; mutating
// groups are gated by bearer auth plus the required role.
func RegisterRoutes(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	e.GET("/healthz", handler.Health)

	// Uploaded images are served statically under the same prefix the
	// upload endpoint reports in its URLs.
	e.Static("/uploads", cfg.UploadDir)

	auth := e.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/profile", h.Auth.Profile, middleware.Auth(cfg.JWTSecret))

	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)

	events := e.Group("/events")
	events.GET("", h.Events.List, cache)
	events.GET("/:id", h.Events.Get, cache)
	// Static /mine must be registered despite the /:id route; Echo prefers
	// the literal match.
	organizer := middleware.RequireRole(model.RoleOrganizer)
	events.GET("/mine", h.Events.Mine, middleware.Auth(cfg.JWTSecret), organizer)
	events.POST("", h.Events.Create, middleware.Auth(cfg.JWTSecret), organizer)
	events.PUT("/:id", h.Events.Update, middleware.Auth(cfg.JWTSecret), organizer)
	events.DELETE("/:id", h.Events.Delete, middleware.Auth(cfg.JWTSecret), organizer)

	vendor := middleware.RequireRole(model.RoleVendor)
	apps := e.Group("/applications", middleware.Auth(cfg.JWTSecret))
	apps.POST("", h.Apps.Create, vendor)
	apps.GET("/mine", h.Apps.Mine, vendor)
	apps.GET("/check/:eventId", h.Apps.Check, vendor)
	apps.DELETE("/:id", h.Apps.Withdraw, vendor)
	apps.GET("/event/:eventId", h.Apps.ListForEvent, organizer)
	apps.PUT("/:id", h.Apps.Decide, organizer)

	e.POST("/uploads", h.Upload.Upload, middleware.Auth(cfg.JWTSecret))

	// Unmatched routes echo the path back to ease client debugging.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "route not found",
			"path":  c.Request().URL.Path,
		})
	})
}
