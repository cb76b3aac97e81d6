package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
)

// PaymentRepo records simulated payments against bookings.
type PaymentRepo struct {
	store *database.Store
}

func NewPaymentRepo(store *database.Store) *PaymentRepo { return &PaymentRepo{store: store} }

// CreateTx inserts p within tx. A transaction id that already exists yields
// ErrDuplicateTransaction.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx, `INSERT INTO payments
		(booking_id, amount_cents, payment_method, payment_date, transaction_id, status)
		VALUES (?,?,?,?,?,?)`,
		p.BookingID, p.AmountCents, p.Method, database.FormatTime(p.PaymentDate), p.TransactionID, p.Status)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateTransaction
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetByBooking returns the latest payment of a booking, or nil, nil when the
// booking has not been paid.
func (r *PaymentRepo) GetByBooking(ctx context.Context, bookingID int64) (*model.Payment, error) {
	db, err := r.store.DB()
	if err != nil {
		return nil, err
	}
	var p model.Payment
	var date string
	err = db.QueryRowContext(ctx, `SELECT id, booking_id, amount_cents, payment_method, payment_date, transaction_id, status
		FROM payments WHERE booking_id = ? ORDER BY id DESC LIMIT 1`, bookingID).
		Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &date, &p.TransactionID, &p.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.PaymentDate = database.ParseTime(date)
	return &p, nil
}
