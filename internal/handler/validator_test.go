package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/repository"
)

func TestValidator_CustomRules(t *testing.T) {
	v := NewValidator()
	type form struct {
		Name   string `json:"name" validate:"omitempty,fullname"`
		Phone  string `json:"phone" validate:"omitempty,phone10"`
		Card   string `json:"card" validate:"omitempty,card16"`
		Expiry string `json:"expiry" validate:"omitempty,expiry"`
		CVV    string `json:"cvv" validate:"omitempty,cvv"`
	}

	ok := []form{
		{Name: "Mary-Jane O'Neil"},
		{Phone: "555-123-4567"},
		{Phone: "(555) 123 4567"},
		{Card: "4111 1111 1111 1111"},
		{Expiry: "01/27"},
		{CVV: "007"},
	}
	for _, f := range ok {
		assert.NoError(t, v.Validate(&f), "%+v", f)
	}

	bad := map[string]form{
		"name":   {Name: "J"},
		"phone":  {Phone: "555-123-456a"},
		"card":   {Card: "4111 1111 1111"},
		"expiry": {Expiry: "13/27"},
		"cvv":    {CVV: "12"},
	}
	for field, f := range bad {
		err := v.Validate(&f)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), field)
		assert.Contains(t, verr.Fields, field)
	}
	assert.Error(t, v.Validate(&form{Name: "R2D2"}))
}

func TestPaymentReq(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(&paymentReq{Method: "upi"}))
	assert.Error(t, v.Validate(&paymentReq{Method: "cash"}))
	assert.Error(t, v.Validate(&paymentReq{Method: "card"}))
	assert.NoError(t, v.Validate(&paymentReq{
		Method: "card", CardNumber: "4111111111111111", CardHolder: "Ada Lovelace", Expiry: "12/29", CVV: "123",
	}))

	p := paymentReq{Method: "WALLET"}
	assert.Equal(t, inventory.PaymentRequest{AmountCents: 3600, Method: "wallet"}, p.request(3600))
	p.AmountCents = 100
	assert.Equal(t, int64(100), p.request(3600).AmountCents)
}

func TestRespond_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{errBadBody, http.StatusBadRequest},
		{&ValidationError{Fields: map[string]string{"email": "email"}}, http.StatusBadRequest},
		{inventory.ErrTooManySeats, http.StatusBadRequest},
		{repository.ErrShowtimeNotFound, http.StatusNotFound},
		{&inventory.SeatUnavailableError{SeatIDs: []int64{4}}, http.StatusConflict},
		{repository.ErrEmailExists, http.StatusConflict},
		{repository.ErrNotInitialized, http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		require.NoError(t, respond(c, tc.err))
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = respond(c, errors.New("secret detail"))
	assert.NotContains(t, rec.Body.String(), "secret detail")
	assert.Error(t, c.Get("error").(error))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "36.00", formatCents(3600))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "-12.50", formatCents(-1250))
}
