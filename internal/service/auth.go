// Package service holds the account and catalog use cases behind the HTTP
// API. Booking itself lives in the inventory package.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
	"github.com/iliyamo/moviego/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", utils.MinPasswordLength)
)

// AuthConfig carries the token and hashing settings of AuthService.
type AuthConfig struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Tokens is the access/refresh pair handed to a client after sign-in.
type Tokens struct {
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// RegisterInput is a sign-up request after field validation.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

// AuthService signs users up and in and manages their profile.
type AuthService struct {
	cfg      AuthConfig
	users    *repository.UserRepo
	tokens   *repository.TokenRepo
	bookings *repository.BookingRepo
	log      *zap.Logger
}

func NewAuthService(cfg AuthConfig, users *repository.UserRepo, tokens *repository.TokenRepo, bookings *repository.BookingRepo, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{cfg: cfg, users: users, tokens: tokens, bookings: bookings, log: log}
}

// Register creates the account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, Tokens, error) {
	password := strings.TrimSpace(in.Password)
	if len(password) < utils.MinPasswordLength {
		return nil, Tokens{}, ErrWeakPassword
	}
	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, Tokens{}, err
	}
	u := &model.User{
		Email:        in.Email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, Tokens{}, err
	}
	s.log.Info("user registered", zap.Int64("user_id", u.ID))
	t, err := s.issue(ctx, u)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, t, nil
}

// Login verifies the credentials and issues a fresh token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, Tokens, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, Tokens{}, err
	}
	if u == nil || !utils.VerifyPassword(u.PasswordHash, strings.TrimSpace(password)) {
		return nil, Tokens{}, ErrInvalidCredentials
	}
	t, err := s.issue(ctx, u)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, t, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*model.User, Tokens, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Tokens{}, ErrInvalidRefresh
		}
		return nil, Tokens{}, err
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return nil, Tokens{}, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, Tokens{}, err
	}
	if u == nil {
		return nil, Tokens{}, ErrInvalidRefresh
	}
	t, err := s.issue(ctx, u)
	if err != nil {
		return nil, Tokens{}, err
	}
	return u, t, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(strings.TrimSpace(raw)))
}

// Profile returns the user or ErrUserNotFound.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

// UpdateProfile stores the editable fields and returns the updated user.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*model.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, in.FullName, in.Phone, in.Address); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// ChangePassword replaces the password after checking the current one and
// revokes every refresh token of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < utils.MinPasswordLength {
		return ErrWeakPassword
	}
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, current) {
		return ErrWrongPassword
	}
	hash, err := utils.HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, userID); err != nil {
		s.log.Warn("revoke refresh tokens failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return nil
}

// Stats summarises the user's bookings.
func (s *AuthService) Stats(ctx context.Context, userID int64) (model.UserStats, error) {
	return s.bookings.StatsByUser(ctx, userID)
}

func (s *AuthService) issue(ctx context.Context, u *model.User) (Tokens, error) {
	access, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, s.cfg.AccessTTLMin)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Tokens{}, err
	}
	if err := s.tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}
