package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/service"
)

var (
	errBadID   = errors.New("invalid id")
	errBadDate = errors.New("date must be YYYY-MM-DD")
)

// CatalogHandler serves the public browsing endpoints. No authentication
// is required.
type CatalogHandler struct {
	Catalog *service.CatalogService
}

func NewCatalogHandler(cs *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: cs}
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// Movies handles GET /v1/movies?q=&genre=.
func (h *CatalogHandler) Movies(c echo.Context) error {
	list, err := h.Catalog.Movies(c.Request().Context(), c.QueryParam("q"), c.QueryParam("genre"))
	if err != nil {
		return respond(c, err)
	}
	out := make([]movieResp, len(list))
	for i, m := range list {
		out[i] = toMovie(m)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Genres handles GET /v1/genres.
func (h *CatalogHandler) Genres(c echo.Context) error {
	list, err := h.Catalog.Genres(c.Request().Context())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// Movie handles GET /v1/movies/:id.
func (h *CatalogHandler) Movie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	m, err := h.Catalog.Movie(c.Request().Context(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toMovie(*m))
}

// Dates handles GET /v1/movies/:id/dates: upcoming dates that still have
// free seats.
func (h *CatalogHandler) Dates(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	dates, err := h.Catalog.Dates(c.Request().Context(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": dates})
}

// Showtimes handles GET /v1/movies/:id/showtimes?date=YYYY-MM-DD.
func (h *CatalogHandler) Showtimes(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	date := strings.TrimSpace(c.QueryParam("date"))
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return badRequest(c, errBadDate.Error())
		}
	}
	list, err := h.Catalog.Showtimes(c.Request().Context(), id, date)
	if err != nil {
		return respond(c, err)
	}
	out := make([]showtimeResp, len(list))
	for i, st := range list {
		out[i] = toShowtime(st)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Showtime handles GET /v1/showtimes/:id.
func (h *CatalogHandler) Showtime(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	st, err := h.Catalog.Showtime(c.Request().Context(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toShowtime(*st))
}

// Seats handles GET /v1/showtimes/:id/seats and returns the seat grid by
// row.
func (h *CatalogHandler) Seats(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	sm, err := h.Catalog.SeatMap(c.Request().Context(), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toSeatMap(sm))
}
