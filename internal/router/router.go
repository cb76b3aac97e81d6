package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/moviego/internal/config"
	"github.com/iliyamo/moviego/internal/handler"
	"github.com/iliyamo/moviego/internal/middleware"
)

// Deps bundles the handlers and shared clients the routes are built from.
// Redis may be nil; caching is then off and rate limiting stays in-process.
type Deps struct {
	Cfg      config.Config
	Log      *zap.Logger
	Redis    *redis.Client
	Health   handler.Health
	Auth     *handler.AuthHandler
	Catalog  *handler.CatalogHandler
	Bookings *handler.BookingHandler
}

// Register mounts every route of the API.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.Health)
	limit := middleware.NewTokenBucket(d.Cfg.RateLimit, d.Redis, d.Log)
	RegisterAuth(e, d.Auth, d.Cfg.JWTSecret, limit)
	RegisterPublic(e, d.Catalog, middleware.NewRedisCache(d.Cfg.Cache, d.Redis, d.Log))
	RegisterBookings(e, d.Bookings, d.Cfg.JWTSecret, limit)
}

// RegisterRoutes registers routes that do not require authentication and
// are never rate limited. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h handler.Health) {
	e.GET("/healthz", h.Check)
}

// RegisterAuth registers the authentication routes. Sign-up, sign-in and
// token exchange live under /v1/auth; profile endpoints under /v1/me
// require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// rotates the refresh token
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/v1/me", middleware.JWTAuth(jwtSecret))
	me.GET("", a.Me)
	me.PUT("", a.UpdateMe)
	me.PUT("/password", a.ChangePassword, limit)
	me.GET("/stats", a.Stats)
}

// RegisterPublic registers the unauthenticated browse endpoints. Movie
// data only changes on restart, so those responses go through the cache;
// dates, showtimes and seat maps change with every booking and do not.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/movies", p.Movies, cache)
	e.GET("/v1/genres", p.Genres, cache)
	e.GET("/v1/movies/:id", p.Movie, cache)
	e.GET("/v1/movies/:id/dates", p.Dates)
	e.GET("/v1/movies/:id/showtimes", p.Showtimes)
	e.GET("/v1/showtimes/:id", p.Showtime)
	e.GET("/v1/showtimes/:id/seats", p.Seats)
}
