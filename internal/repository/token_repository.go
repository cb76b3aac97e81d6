package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/moviego/internal/database"
)

// TokenRepo persists and validates refresh token hashes.
type TokenRepo struct {
	store *database.Store
	Clock func() time.Time
}

func NewTokenRepo(store *database.Store) *TokenRepo {
	return &TokenRepo{store: store, Clock: time.Now}
}

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID int64, tokenHash string, exp time.Time) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?)",
		userID, tokenHash, database.FormatTime(exp), database.FormatTime(r.Clock()))
	if database.IsUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// ValidateRefresh returns the owning user id if a non-revoked, non-expired
// token with that hash exists, ErrNotFound otherwise.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (int64, error) {
	db, err := r.store.DB()
	if err != nil {
		return 0, err
	}
	var (
		userID    int64
		expiresAt string
		revokedAt sql.NullString
	)
	err = db.QueryRowContext(ctx,
		"SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1",
		tokenHash).Scan(&userID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return 0, ErrNotFound
	}
	if r.Clock().UTC().After(database.ParseTime(expiresAt)) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL",
		database.FormatTime(r.Clock()), tokenHash)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		database.FormatTime(r.Clock()), userID)
	return err
}
