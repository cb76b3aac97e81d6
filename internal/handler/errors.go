package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/middleware"
	"github.com/iliyamo/moviego/internal/repository"
	"github.com/iliyamo/moviego/internal/service"
	"github.com/iliyamo/moviego/internal/session"
)

var errBadBody = errors.New("invalid body")

// errBody is the JSON shape of every error response.
type errBody struct {
	Error     string            `json:"error"`
	Kind      string            `json:"kind,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	SeatIDs   []int64           `json:"seat_ids,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errBody{Error: msg, Kind: inventory.KindValidation.String()})
}

// respond maps a service or engine error onto an HTTP status. Storage
// faults are logged by the request logger and answered generically.
func respond(c echo.Context, err error) error {
	var verr *ValidationError
	switch {
	case errors.Is(err, errBadBody):
		return badRequest(c, err.Error())
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, errBody{Error: verr.Error(), Kind: inventory.KindValidation.String(), Fields: verr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidRefresh):
		return c.JSON(http.StatusUnauthorized, errBody{Error: err.Error()})
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrWeakPassword), errors.Is(err, session.ErrIncomplete):
		return badRequest(c, err.Error())
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, errBody{Error: "email already registered", Kind: inventory.KindConflict.String()})
	}

	kind := inventory.KindOf(err)
	body := errBody{Error: err.Error(), Kind: kind.String()}
	switch kind {
	case inventory.KindNotFound:
		return c.JSON(http.StatusNotFound, body)
	case inventory.KindValidation:
		return c.JSON(http.StatusBadRequest, body)
	case inventory.KindConflict:
		body.SeatIDs = inventory.UnavailableSeats(err)
		body.Retryable = inventory.IsRetryable(err)
		return c.JSON(http.StatusConflict, body)
	case inventory.KindNotInitialized:
		return c.JSON(http.StatusServiceUnavailable, errBody{Error: "storage unavailable", Kind: kind.String()})
	}
	c.Set(middleware.CtxError, err)
	return c.JSON(http.StatusInternalServerError, errBody{Error: "internal error", Kind: kind.String()})
}
