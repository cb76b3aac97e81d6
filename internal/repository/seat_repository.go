package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// seatBatch bounds the rows per multi-VALUES insert.
const seatBatch = 200

// SeatRepo provides methods to work with the seats of showtimes.
type SeatRepo struct {
	store *database.Store
}

// NewSeatRepo constructs a SeatRepo bound to the given store.
func NewSeatRepo(store *database.Store) *SeatRepo {
	return &SeatRepo{store: store}
}

const seatColumns = "id, showtime_id, seat_row, seat_number, is_available"

// ListByShowtime returns the full seat grid of a showtime ordered by row
// then number.
func (r *SeatRepo) ListByShowtime(ctx context.Context, showtimeID int64) ([]model.Seat, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT "+seatColumns+
		" FROM seats WHERE showtime_id = ? ORDER BY seat_row, seat_number", showtimeID)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// CreateBulkTx inserts seats within tx using multi-row statements. Passing
// an empty slice has no effect.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	for start := 0; start < len(seats); start += seatBatch {
		end := start + seatBatch
		if end > len(seats) {
			end = len(seats)
		}
		chunk := seats[start:end]
		var b strings.Builder
		b.WriteString("INSERT INTO seats (showtime_id, seat_row, seat_number, is_available) VALUES ")
		args := make([]interface{}, 0, len(chunk)*4)
		for i, s := range chunk {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?, ?, ?, ?)")
			args = append(args, s.ShowtimeID, s.Row, s.Number, boolInt(s.IsAvailable))
		}
		if _, err := tx.ExecContext(ctx, b.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// ListByIDsTx loads the seats with the given ids within tx. Ids that do not
// exist are simply absent from the result.
func (r *SeatRepo) ListByIDsTx(ctx context.Context, tx *sql.Tx, ids []int64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	in, args := inClause(ids)
	rows, err := tx.QueryContext(ctx, "SELECT "+seatColumns+
		" FROM seats WHERE id IN ("+in+") ORDER BY seat_row, seat_number", args...)
	if err != nil {
		return nil, err
	}
	return collectSeats(rows)
}

// ClaimTx marks the given seats of a showtime unavailable, touching only
// seats that are still available. It returns the number of seats claimed;
// callers compare it with len(ids) to detect a lost race.
func (r *SeatRepo) ClaimTx(ctx context.Context, tx *sql.Tx, showtimeID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	args = append([]interface{}{showtimeID}, args...)
	res, err := tx.ExecContext(ctx,
		"UPDATE seats SET is_available = 0 WHERE showtime_id = ? AND is_available = 1 AND id IN ("+in+")",
		args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountAvailable counts the seats of a showtime still flagged available.
func (r *SeatRepo) CountAvailable(ctx context.Context, showtimeID int64) (int, error) {
	db, err := r.store.DB()
	if err != nil {
		return 0, err
	}
	var n int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM seats WHERE showtime_id = ? AND is_available = 1", showtimeID).Scan(&n)
	return n, err
}

func collectSeats(rows *sql.Rows) ([]model.Seat, error) {
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ShowtimeID, &s.Row, &s.Number, &s.IsAvailable); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
