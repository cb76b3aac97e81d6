package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/database"
)

// Health reports liveness, and storage reachability when a store is set.
type Health struct {
	Store *database.Store
}

// Check answers GET /healthz with 200 "ok", or 503 when the database does
// not respond.
func (h Health) Check(c echo.Context) error {
	if h.Store == nil {
		return c.String(http.StatusOK, "ok")
	}
	db, err := h.Store.DB()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "storage unavailable")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return c.String(http.StatusServiceUnavailable, "storage unavailable")
	}
	return c.String(http.StatusOK, "ok")
}
