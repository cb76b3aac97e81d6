package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/handler"
	"github.com/iliyamo/moviego/internal/middleware"
)

// RegisterBookings registers the booking endpoints under /v1/bookings. All
// routes require a valid JWT; handlers only ever return the caller's own
// bookings. Writes are rate limited.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/bookings", middleware.JWTAuth(jwtSecret))
	g.POST("", h.Create, limit)
	g.GET("", h.List)
	g.GET("/ref/:ref", h.GetByReference)
	g.GET("/:id", h.Get)
	g.POST("/:id/payment", h.Pay, limit)
}
