package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/moviego/internal/middleware"
	"github.com/iliyamo/moviego/internal/repository"
	"github.com/iliyamo/moviego/internal/service"
)

const requestTimeout = 5 * time.Second

// AuthHandler serves sign-up, sign-in and the profile endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

type registerReq struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
	FullName        string `json:"full_name" validate:"required,fullname"`
	Phone           string `json:"phone" validate:"omitempty,phone10"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type profileReq struct {
	FullName string `json:"full_name" validate:"required,fullname"`
	Phone    string `json:"phone" validate:"omitempty,phone10"`
	Address  string `json:"address" validate:"max=255"`
}

type passwordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=NewPassword"`
}

// bind decodes and validates the body in one step.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errBadBody
	}
	return c.Validate(req)
}

// Register: create the account and return a token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, t, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:    repository.NormalizeEmail(req.Email),
		Password: req.Password,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    normalizePhone(req.Phone),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusCreated, toAuth(u, t))
}

// Login: verify credentials and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, t, err := h.Auth.Login(ctx, repository.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toAuth(u, t))
}

// Refresh: revoke the presented refresh token and issue a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, t, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toAuth(u, t))
}

// Logout: revoke the refresh token. Unknown tokens still answer 204.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.Logout(ctx, req.RefreshToken); err != nil {
		return respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	u, err := h.Auth.Profile(c.Request().Context(), uid)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// UpdateMe stores the editable profile fields.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	u, err := h.Auth.UpdateProfile(c.Request().Context(), uid, service.ProfileInput{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    normalizePhone(req.Phone),
		Address:  strings.TrimSpace(req.Address),
	})
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// ChangePassword replaces the password and signs out every session.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	var req passwordReq
	if err := bind(c, &req); err != nil {
		return respond(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Auth.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword); err != nil {
		return respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats returns booking totals for the profile screen.
func (h *AuthHandler) Stats(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errBody{Error: "unauthorized"})
	}
	st, err := h.Auth.Stats(c.Request().Context(), uid)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(http.StatusOK, statsResp{
		TotalBookings:   st.TotalBookings,
		MoviesWatched:   st.MoviesWatched,
		TotalSpentCents: st.TotalSpentCents,
		TotalSpent:      formatCents(st.TotalSpentCents),
	})
}
