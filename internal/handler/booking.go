package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/middleware"
	"github.com/iliyamo/moviego/internal/service"
	"github.com/iliyamo/moviego/internal/session"
)

// BookingHandler serves the signed-in booking endpoints: checkout, the
// user's booking list and tickets, and settling an unpaid booking.
type BookingHandler struct {
	Catalog *service.CatalogService
	Engine  *inventory.Engine
}

func NewBookingHandler(cs *service.CatalogService, e *inventory.Engine) *BookingHandler {
	return &BookingHandler{Catalog: cs, Engine: e}
}

// paymentReq carries the simulated payment details. Card data is only
// checked for shape and never stored.
type paymentReq struct {
	Method      string `json:"method" validate:"required,oneof=card wallet upi"`
	AmountCents int64  `json:"amount_cents" validate:"gte=0"`
	CardNumber  string `json:"card_number" validate:"required_if=Method card,omitempty,card16"`
	CardHolder  string `json:"card_holder" validate:"required_if=Method card,omitempty,fullname"`
	Expiry      string `json:"expiry" validate:"required_if=Method card,omitempty,expiry"`
	CVV         string `json:"cvv" validate:"required_if=Method card,omitempty,cvv"`
}

type checkoutReq struct {
	MovieID    int64       `json:"movie_id" validate:"gte=0"`
	ShowtimeID int64       `json:"showtime_id" validate:"required,gt=0"`
	SeatIDs    []int64     `json:"seat_ids" validate:"required,min=1"`
	Payment    *paymentReq `json:"payment"`
}

func (p *paymentReq) request(total int64) inventory.PaymentRequest {
	amount := p.AmountCents
	if amount == 0 {
		amount = total
	}
	return inventory.PaymentRequest{AmountCents: amount, Method: strings.ToLower(p.Method)}
}

// Create handles POST /v1/bookings. With a payment the booking is
// committed and paid in one step; without one it is committed with
// payment pending and can be settled through Pay.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	var req checkoutReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.Catalog.Showtime(ctx, req.ShowtimeID)
	if err != nil {
		return respond(c, err)
	}
	draft := session.NewDraft().WithMovie(req.MovieID).WithShowtime(*st).WithSeats(req.SeatIDs...)
	if err := draft.Validate(h.Engine.MaxSeats()); err != nil {
		return respond(c, err)
	}

	var rec *inventory.Receipt
	if req.Payment != nil {
		rec, err = h.Engine.Checkout(ctx, draft.Request(uid), req.Payment.request(draft.Total()))
	} else {
		rec, err = h.Engine.Commit(ctx, draft.Request(uid))
	}
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, fromReceipt(*rec))
}

// Pay handles POST /v1/bookings/:id/payment for a booking committed
// without payment.
func (h *BookingHandler) Pay(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Catalog.Booking(ctx, uid, id)
	if err != nil {
		return respond(c, err)
	}
	p, err := h.Engine.RecordPayment(ctx, b.ID, req.request(b.TotalAmountCents))
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, paymentResp{
		ID: p.PaymentID, BookingID: p.BookingID, TransactionID: p.TransactionID,
		AmountCents: p.AmountCents, Amount: formatCents(p.AmountCents),
		Method: p.Method, PaidAt: p.PaidAt,
	})
}

// List handles GET /v1/bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	list, err := h.Catalog.Bookings(c.Request().Context(), uid)
	if err != nil {
		return respond(c, err)
	}
	out := make([]bookingResp, len(list))
	for i, b := range list {
		out[i] = toBooking(b)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	b, err := h.Catalog.Booking(c.Request().Context(), uid, id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toBooking(*b))
}

// GetByReference handles GET /v1/bookings/ref/:ref, the ticket lookup.
func (h *BookingHandler) GetByReference(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	ref := strings.ToUpper(strings.TrimSpace(c.Param("ref")))
	if !inventory.ReferencePattern.MatchString(ref) {
		return badRequest(c, "invalid booking reference")
	}
	b, err := h.Catalog.BookingByReference(c.Request().Context(), uid, ref)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toBooking(*b))
}
