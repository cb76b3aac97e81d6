package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// BookingRepo provides access to bookings and the booking_seats join
// table. All timestamps are stored in UTC.
type BookingRepo struct {
	store *database.Store
}

// NewBookingRepo returns a new BookingRepo bound to the given store.
func NewBookingRepo(store *database.Store) *BookingRepo { return &BookingRepo{store: store} }

const bookingColumns = `b.id, b.user_id, b.movie_id, b.showtime_id, b.booking_date, b.total_seats,
	b.total_amount_cents, b.status, b.payment_status, b.booking_reference`

const bookingDetailQuery = `SELECT ` + bookingColumns + `,
	m.title, m.poster_url, m.genre, s.show_date, s.show_time, s.screen_number
	FROM bookings b
	JOIN movies m ON m.id = b.movie_id
	JOIN showtimes s ON s.id = b.showtime_id`

// CreateTx inserts b within tx and sets its ID. A reference that already
// exists yields ErrDuplicateReference. The caller must commit or roll back.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(user_id, movie_id, showtime_id, booking_date, total_seats, total_amount_cents, status, payment_status, booking_reference)
		VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q, b.UserID, b.MovieID, b.ShowtimeID, database.FormatTime(b.BookingDate),
		b.TotalSeats, b.TotalAmountCents, b.Status, b.PaymentStatus, b.Reference)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// CreateSeatsBulkTx links every seat id to the booking in one statement.
// Passing no seats has no effect.
func (r *BookingRepo) CreateSeatsBulkTx(ctx context.Context, tx *sql.Tx, bookingID int64, seatIDs []int64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*2)
	for i, id := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, bookingID, id)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// GetByIDTx loads the bare booking row within tx, or ErrBookingNotFound.
func (r *BookingRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*model.Booking, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+bookingColumns+" FROM bookings b WHERE b.id = ?", id)
	var b model.Booking
	var date string
	err := row.Scan(&b.ID, &b.UserID, &b.MovieID, &b.ShowtimeID, &date, &b.TotalSeats,
		&b.TotalAmountCents, &b.Status, &b.PaymentStatus, &b.Reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	b.BookingDate = database.ParseTime(date)
	return &b, nil
}

// GetByID returns a booking with its movie, showtime and seats, or
// ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id int64) (*model.BookingDetail, error) {
	return r.getDetail(ctx, bookingDetailQuery+" WHERE b.id = ?", id)
}

// GetByReference looks a booking up by its public reference.
func (r *BookingRepo) GetByReference(ctx context.Context, ref string) (*model.BookingDetail, error) {
	return r.getDetail(ctx, bookingDetailQuery+" WHERE b.booking_reference = ?", ref)
}

func (r *BookingRepo) getDetail(ctx context.Context, q string, arg interface{}) (*model.BookingDetail, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	det, err := scanBookingDetail(db.QueryRowContext(ctx, q, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	seats, err := r.SeatsForBooking(ctx, det.ID)
	if err != nil {
		return nil, err
	}
	det.Seats = seats
	return &det, nil
}

// ListByUser returns a user's bookings, newest first, each populated with
// its seats.
func (r *BookingRepo) ListByUser(ctx context.Context, userID int64) ([]model.BookingDetail, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, bookingDetailQuery+
		" WHERE b.user_id = ? ORDER BY b.booking_date DESC, b.id DESC", userID)
	if err != nil {
		return nil, err
	}
	details := make([]model.BookingDetail, 0)
	index := make(map[int64]int)
	for rows.Next() {
		det, err := scanBookingDetail(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		det.Seats = []model.Seat{}
		index[det.ID] = len(details)
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]int64, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
	}
	in, args := inClause(ids)
	srows, err := db.QueryContext(ctx, `SELECT bs.booking_id, se.id, se.showtime_id, se.seat_row, se.seat_number, se.is_available
		FROM booking_seats bs
		JOIN seats se ON se.id = bs.seat_id
		WHERE bs.booking_id IN (`+in+`)
		ORDER BY se.seat_row, se.seat_number`, args...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bookingID int64
		var s model.Seat
		if err := srows.Scan(&bookingID, &s.ID, &s.ShowtimeID, &s.Row, &s.Number, &s.IsAvailable); err != nil {
			return nil, err
		}
		if i, ok := index[bookingID]; ok {
			details[i].Seats = append(details[i].Seats, s)
		}
	}
	if err := srows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// SeatsForBooking returns the seats linked to a booking ordered by row and
// number.
func (r *BookingRepo) SeatsForBooking(ctx context.Context, bookingID int64) ([]model.Seat, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT se.id, se.showtime_id, se.seat_row, se.seat_number, se.is_available
		FROM booking_seats bs
		JOIN seats se ON se.id = bs.seat_id
		WHERE bs.booking_id = ?
		ORDER BY se.seat_row, se.seat_number`, bookingID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// UpdatePaymentStatusTx moves a booking's payment_status from one value to
// another within tx. It returns ErrBookingNotFound for an unknown booking and
// ErrConflict when the booking is not currently in the from state.
func (r *BookingRepo) UpdatePaymentStatusTx(ctx context.Context, tx *sql.Tx, id int64, from, to string) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE bookings SET payment_status = ? WHERE id = ? AND payment_status = ?", to, id, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE id = ?", id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return ErrBookingNotFound
	}
	return ErrConflict
}

// StatsByUser aggregates a user's booking history.
func (r *BookingRepo) StatsByUser(ctx context.Context, userID int64) (model.UserStats, error) {
	db, err := r.store.DB()
	if err != nil {
		return model.UserStats{}, err
	}
	var st model.UserStats
	err = db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT movie_id), COALESCE(SUM(total_amount_cents), 0)
		FROM bookings WHERE user_id = ?`, userID).Scan(&st.TotalBookings, &st.MoviesWatched, &st.TotalSpentCents)
	return st, err
}

func scanBookingDetail(row rowScanner) (model.BookingDetail, error) {
	var d model.BookingDetail
	var date string
	err := row.Scan(&d.ID, &d.UserID, &d.MovieID, &d.ShowtimeID, &date, &d.TotalSeats,
		&d.TotalAmountCents, &d.Status, &d.PaymentStatus, &d.Reference,
		&d.MovieTitle, &d.PosterURL, &d.Genre, &d.ShowDate, &d.ShowTime, &d.ScreenNumber)
	if err != nil {
		return model.BookingDetail{}, err
	}
	d.BookingDate = database.ParseTime(date)
	return d, nil
}
