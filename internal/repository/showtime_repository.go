package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// ShowtimeRepo provides access to the showtimes table. Listings only
// include active showtimes and are ordered by date, time, then id.
type ShowtimeRepo struct {
	store *database.Store
}

func NewShowtimeRepo(store *database.Store) *ShowtimeRepo { return &ShowtimeRepo{store: store} }

const showtimeColumns = "id, movie_id, show_date, show_time, screen_number, available_seats, price_cents, is_active"

const showtimeOrder = " ORDER BY show_date, show_time, id"

// GetByID returns the showtime with id or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id int64) (*model.Showtime, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	return getShowtime(db.QueryRowContext(ctx, "SELECT "+showtimeColumns+" FROM showtimes WHERE id = ?", id))
}

// GetByIDTx is GetByID inside an open transaction.
func (r *ShowtimeRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Showtime, error) {
	return getShowtime(tx.QueryRowContext(ctx, "SELECT "+showtimeColumns+" FROM showtimes WHERE id = ?", id))
}

// ListByMovie returns the active showtimes of a movie on or after fromDate
// (YYYY-MM-DD). An empty fromDate lists all of them.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID int64, fromDate string) ([]model.Showtime, error) {
	return r.list(ctx, "SELECT "+showtimeColumns+` FROM showtimes
		WHERE movie_id = ? AND is_active = 1 AND show_date >= ?`+showtimeOrder, movieID, fromDate)
}

// ListByMovieAndDate returns the active showtimes of a movie on one date.
func (r *ShowtimeRepo) ListByMovieAndDate(ctx context.Context, movieID int64, date string) ([]model.Showtime, error) {
	return r.list(ctx, "SELECT "+showtimeColumns+` FROM showtimes
		WHERE movie_id = ? AND is_active = 1 AND show_date = ?`+showtimeOrder, movieID, date)
}

// AvailableDates returns the distinct dates, ascending, on or after fromDate
// on which the movie has an active showtime with at least one free seat.
func (r *ShowtimeRepo) AvailableDates(ctx context.Context, movieID int64, fromDate string) ([]string, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT show_date FROM showtimes
		WHERE movie_id = ? AND is_active = 1 AND available_seats > 0 AND show_date >= ?
		ORDER BY show_date`, movieID, fromDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// CreateTx inserts st within tx and sets its ID.
func (r *ShowtimeRepo) CreateTx(ctx context.Context, tx *sql.Tx, st *model.Showtime) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO showtimes
		(movie_id, show_date, show_time, screen_number, available_seats, price_cents, is_active)
		VALUES (?,?,?,?,?,?,?)`,
		st.MovieID, st.ShowDate, st.ShowTime, st.ScreenNumber, st.AvailableSeats, st.PriceCents, boolInt(st.IsActive))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

// DecrementAvailableTx lowers available_seats by n only if at least n seats
// remain. It returns ErrConflict when the guard rejects the update.
func (r *ShowtimeRepo) DecrementAvailableTx(ctx context.Context, tx *sql.Tx, id int64, n int) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE showtimes SET available_seats = available_seats - ? WHERE id = ? AND available_seats >= ?",
		n, id, n)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return ErrConflict
	}
	return nil
}

func (r *ShowtimeRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Showtime, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Showtime, 0)
	for rows.Next() {
		st, err := scanShowtime(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func getShowtime(row *sql.Row) (*model.Showtime, error) {
	st, err := scanShowtime(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func scanShowtime(row rowScanner) (model.Showtime, error) {
	var st model.Showtime
	err := row.Scan(&st.ID, &st.MovieID, &st.ShowDate, &st.ShowTime, &st.ScreenNumber,
		&st.AvailableSeats, &st.PriceCents, &st.IsActive)
	return st, err
}
