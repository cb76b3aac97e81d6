package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// UserRepo reads and writes the users table.
type UserRepo struct {
	store *database.Store
	Clock func() time.Time
}

func NewUserRepo(store *database.Store) *UserRepo {
	return &UserRepo{store: store, Clock: time.Now}
}

// NormalizeEmail trims and lower-cases an address the way it is stored.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

const userColumns = "id, email, password_hash, full_name, phone, address, created_at, updated_at"

// Create inserts u (PasswordHash must already be set) and fills in its ID
// and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	u.Email = NormalizeEmail(u.Email)
	now := r.Clock().UTC().Truncate(time.Second)
	ts := database.FormatTime(now)
	res, err := db.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, full_name, phone, address, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, strings.TrimSpace(u.FullName), strings.TrimSpace(u.Phone), strings.TrimSpace(u.Address), ts, ts)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

// GetByEmail fetches a user by normalized email. It returns nil, nil when no
// such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email))
	return scanUserRow(row)
}

// GetByID fetches a user by id. It returns nil, nil when no such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	row := db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
	return scanUserRow(row)
}

// UpdateProfile replaces the editable profile fields of a user.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, fullName, phone, address string) error {
	return r.updateOne(ctx,
		"UPDATE users SET full_name = ?, phone = ?, address = ?, updated_at = ? WHERE id = ?",
		strings.TrimSpace(fullName), strings.TrimSpace(phone), strings.TrimSpace(address),
		database.FormatTime(r.Clock()), id)
}

// UpdatePassword stores a new bcrypt hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.updateOne(ctx,
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		hash, database.FormatTime(r.Clock()), id)
}

func (r *UserRepo) updateOne(ctx context.Context, q string, args ...interface{}) error {
	db, err := r.store.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUserRow(row rowScanner) (*model.User, error) {
	var u model.User
	var created, updated string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Address, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = database.ParseTime(created)
	u.UpdatedAt = database.ParseTime(updated)
	return &u, nil
}
