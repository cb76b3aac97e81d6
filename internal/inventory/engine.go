// Package inventory owns seat inventory: it turns a seat selection into a
// committed booking and records payments, keeping bookings, seat flags and
// showtime counters consistent with each other.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

// DefaultMaxSeats is the largest number of seats one booking may hold.
const DefaultMaxSeats = 10

// defaultTokenAttempts bounds how often a commit is retried after a token
// collision.
const defaultTokenAttempts = 3

// CommitRequest is a seat selection handed over at payment time. MovieID is
// optional; when set it must match the showtime's movie.
type CommitRequest struct {
	UserID     int64
	ShowtimeID int64
	MovieID    int64
	SeatIDs    []int64
}

// PaymentRequest describes a simulated payment.
type PaymentRequest struct {
	AmountCents int64
	Method      string
}

// Receipt is what a successful commit or checkout returns.
type Receipt struct {
	BookingID     int64
	Reference     string
	UserID        int64
	MovieID       int64
	ShowtimeID    int64
	ShowDate      string
	ShowTime      string
	ScreenNumber  int
	Seats         []model.Seat
	PriceCents    int64
	TotalCents    int64
	Status        string
	PaymentStatus string
	TransactionID string
	BookedAt      time.Time
}

// SeatLabels returns the seat labels of the receipt, e.g. ["A1", "A2"].
func (r Receipt) SeatLabels() []string {
	labels := make([]string, len(r.Seats))
	for i, s := range r.Seats {
		labels[i] = s.Label()
	}
	return labels
}

// PaymentReceipt is returned by RecordPayment.
type PaymentReceipt struct {
	PaymentID     int64
	BookingID     int64
	TransactionID string
	AmountCents   int64
	Method        string
	PaidAt        time.Time
}

// Notifier is told about every booking once it has been committed.
type Notifier interface {
	BookingConfirmed(ctx context.Context, r Receipt) error
}

// Engine serialises commits per showtime and runs every commit and payment
// inside one storage transaction.
type Engine struct {
	store     *database.Store
	showtimes *repository.ShowtimeRepo
	seats     *repository.SeatRepo
	bookings  *repository.BookingRepo
	payments  *repository.PaymentRepo

	tokens        TokenSource
	clock         func() time.Time
	maxSeats      int
	tokenAttempts int
	log           *zap.Logger
	notifier      Notifier
	locks         *keyedMutex
}

// Option configures an Engine.
type Option func(*Engine)

func WithTokens(t TokenSource) Option       { return func(e *Engine) { e.tokens = t } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.clock = now } }
func WithLogger(l *zap.Logger) Option       { return func(e *Engine) { e.log = l } }
func WithNotifier(n Notifier) Option        { return func(e *Engine) { e.notifier = n } }

// WithMaxSeats overrides DefaultMaxSeats. Non-positive values are ignored.
func WithMaxSeats(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSeats = n
		}
	}
}

// WithTokenAttempts sets how many times a colliding token is regenerated
// before the collision is returned.
func WithTokenAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.tokenAttempts = n
		}
	}
}

// NewEngine builds an engine over store.
func NewEngine(store *database.Store, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		showtimes:     repository.NewShowtimeRepo(store),
		seats:         repository.NewSeatRepo(store),
		bookings:      repository.NewBookingRepo(store),
		payments:      repository.NewPaymentRepo(store),
		tokens:        RandomTokens{},
		clock:         time.Now,
		maxSeats:      DefaultMaxSeats,
		tokenAttempts: defaultTokenAttempts,
		log:           zap.NewNop(),
		locks:         newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxSeats reports the per-booking seat limit.
func (e *Engine) MaxSeats() int { return e.maxSeats }

// Commit books the requested seats: it inserts the booking (confirmed,
// payment pending), links and claims the seats and decrements the showtime
// counter, all or nothing.
func (e *Engine) Commit(ctx context.Context, req CommitRequest) (*Receipt, error) {
	return e.run(ctx, req, nil)
}

// Checkout commits the booking and records its payment in the same
// transaction.
func (e *Engine) Checkout(ctx context.Context, req CommitRequest, pay PaymentRequest) (*Receipt, error) {
	if err := validatePayment(pay); err != nil {
		return nil, err
	}
	return e.run(ctx, req, &pay)
}

func (e *Engine) run(ctx context.Context, req CommitRequest, pay *PaymentRequest) (*Receipt, error) {
	if _, err := e.store.DB(); err != nil {
		return nil, err
	}
	ids, err := e.validate(req)
	if err != nil {
		return nil, err
	}

	var rec *Receipt
	err = e.locked(req.ShowtimeID, func() error {
		return e.retryTokens(ctx, func() error {
			return e.inTx(ctx, func(tx *sql.Tx) error {
				r, err := e.commitTx(ctx, tx, req, ids)
				if err != nil {
					return err
				}
				if pay != nil {
					p, err := e.payTx(ctx, tx, r.BookingID, *pay)
					if err != nil {
						return err
					}
					r.PaymentStatus = model.PaymentCompleted
					r.TransactionID = p.TransactionID
				}
				rec = r
				return nil
			})
		})
	})
	if err != nil {
		e.log.Info("booking rejected",
			zap.Int64("user_id", req.UserID),
			zap.Int64("showtime_id", req.ShowtimeID),
			zap.Int64s("seat_ids", ids),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err))
		return nil, err
	}

	e.log.Info("booking committed",
		zap.Int64("booking_id", rec.BookingID),
		zap.String("reference", rec.Reference),
		zap.Int64("showtime_id", rec.ShowtimeID),
		zap.Int("seats", len(rec.Seats)),
		zap.String("payment_status", rec.PaymentStatus))
	e.notify(ctx, *rec)
	return rec, nil
}

// RecordPayment settles a committed booking: it inserts a completed payment
// and flips the booking's payment_status in one transaction.
func (e *Engine) RecordPayment(ctx context.Context, bookingID int64, pay PaymentRequest) (*PaymentReceipt, error) {
	if _, err := e.store.DB(); err != nil {
		return nil, err
	}
	if bookingID <= 0 {
		return nil, ErrBookingNotFound
	}
	if err := validatePayment(pay); err != nil {
		return nil, err
	}
	var out *PaymentReceipt
	err := e.retryTokens(ctx, func() error {
		return e.inTx(ctx, func(tx *sql.Tx) error {
			p, err := e.payTx(ctx, tx, bookingID, pay)
			out = p
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("payment recorded",
		zap.Int64("booking_id", bookingID),
		zap.String("transaction_id", out.TransactionID),
		zap.Int64("amount_cents", out.AmountCents))
	return out, nil
}

func (e *Engine) validate(req CommitRequest) ([]int64, error) {
	if req.UserID <= 0 {
		return nil, ErrMissingUser
	}
	if req.ShowtimeID <= 0 {
		return nil, ErrMissingShowtime
	}
	if len(req.SeatIDs) == 0 {
		return nil, ErrNoSeats
	}
	seen := make(map[int64]struct{}, len(req.SeatIDs))
	ids := make([]int64, 0, len(req.SeatIDs))
	for _, id := range req.SeatIDs {
		if id <= 0 {
			return nil, ErrInvalidSeat
		}
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateSeat
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > e.maxSeats {
		return nil, ErrTooManySeats
	}
	return ids, nil
}

func validatePayment(pay PaymentRequest) error {
	switch strings.ToLower(pay.Method) {
	case model.MethodCard, model.MethodWallet, model.MethodUPI:
	default:
		return ErrInvalidMethod
	}
	if pay.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e *Engine) commitTx(ctx context.Context, tx *sql.Tx, req CommitRequest, ids []int64) (*Receipt, error) {
	st, err := e.showtimes.GetByIDTx(ctx, tx, req.ShowtimeID)
	if err != nil {
		return nil, stepErr(StepLoadShowtime, err)
	}
	switch {
	case !st.IsActive:
		return nil, stepErr(StepLoadShowtime, ErrShowtimeNotFound)
	case req.MovieID != 0 && req.MovieID != st.MovieID:
		return nil, stepErr(StepLoadShowtime, ErrMovieMismatch)
	case st.AvailableSeats <= 0:
		return nil, stepErr(StepLoadShowtime, ErrSoldOut)
	case st.AvailableSeats < len(ids):
		return nil, stepErr(StepLoadShowtime, ErrInsufficientSeats)
	}

	seats, err := e.seats.ListByIDsTx(ctx, tx, ids)
	if err != nil {
		return nil, stepErr(StepLoadSeats, err)
	}
	byID := make(map[int64]model.Seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}
	var taken []int64
	for _, id := range ids {
		s, ok := byID[id]
		if !ok || s.ShowtimeID != st.ID {
			return nil, stepErr(StepLoadSeats, ErrForeignSeat)
		}
		if !s.IsAvailable {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return nil, stepErr(StepLoadSeats, &SeatUnavailableError{SeatIDs: taken})
	}

	now := e.clock().UTC().Truncate(time.Second)
	ref, err := e.tokens.BookingReference(now)
	if err != nil {
		return nil, stepErr(StepReference, err)
	}
	b := model.Booking{
		UserID:           req.UserID,
		MovieID:          st.MovieID,
		ShowtimeID:       st.ID,
		BookingDate:      now,
		TotalSeats:       len(ids),
		TotalAmountCents: st.PriceCents * int64(len(ids)),
		Status:           model.BookingConfirmed,
		PaymentStatus:    model.PaymentPending,
		Reference:        ref,
	}
	if err := e.bookings.CreateTx(ctx, tx, &b); err != nil {
		return nil, stepErr(StepInsertBooking, err)
	}
	if err := e.bookings.CreateSeatsBulkTx(ctx, tx, b.ID, ids); err != nil {
		return nil, stepErr(StepLinkSeats, err)
	}
	claimed, err := e.seats.ClaimTx(ctx, tx, st.ID, ids)
	if err != nil {
		return nil, stepErr(StepClaimSeats, err)
	}
	if claimed != int64(len(ids)) {
		return nil, stepErr(StepClaimSeats, &SeatUnavailableError{SeatIDs: ids})
	}
	if err := e.showtimes.DecrementAvailableTx(ctx, tx, st.ID, len(ids)); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrInsufficientSeats
		}
		return nil, stepErr(StepDecrement, err)
	}

	booked := make([]model.Seat, 0, len(seats))
	for _, s := range seats {
		s.IsAvailable = false
		booked = append(booked, s)
	}
	return &Receipt{
		BookingID:     b.ID,
		Reference:     b.Reference,
		UserID:        b.UserID,
		MovieID:       b.MovieID,
		ShowtimeID:    b.ShowtimeID,
		ShowDate:      st.ShowDate,
		ShowTime:      st.ShowTime,
		ScreenNumber:  st.ScreenNumber,
		Seats:         booked,
		PriceCents:    st.PriceCents,
		TotalCents:    b.TotalAmountCents,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		BookedAt:      now,
	}, nil
}

func (e *Engine) payTx(ctx context.Context, tx *sql.Tx, bookingID int64, pay PaymentRequest) (*PaymentReceipt, error) {
	b, err := e.bookings.GetByIDTx(ctx, tx, bookingID)
	if err != nil {
		return nil, stepErr(StepLoadBooking, err)
	}
	if b.PaymentStatus == model.PaymentCompleted {
		return nil, stepErr(StepLoadBooking, ErrAlreadyPaid)
	}
	if pay.AmountCents != b.TotalAmountCents {
		return nil, stepErr(StepLoadBooking, ErrAmountMismatch)
	}

	now := e.clock().UTC().Truncate(time.Second)
	txnID, err := e.tokens.TransactionID(now)
	if err != nil {
		return nil, stepErr(StepTransactionID, err)
	}
	err = e.bookings.UpdatePaymentStatusTx(ctx, tx, b.ID, model.PaymentPending, model.PaymentCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			err = ErrAlreadyPaid
		}
		return nil, stepErr(StepMarkPaid, err)
	}
	p := model.Payment{
		BookingID:     b.ID,
		AmountCents:   pay.AmountCents,
		Method:        strings.ToLower(pay.Method),
		PaymentDate:   now,
		TransactionID: txnID,
		Status:        model.PaymentCompleted,
	}
	if err := e.payments.CreateTx(ctx, tx, &p); err != nil {
		return nil, stepErr(StepInsertPayment, err)
	}
	return &PaymentReceipt{
		PaymentID:     p.ID,
		BookingID:     b.ID,
		TransactionID: p.TransactionID,
		AmountCents:   p.AmountCents,
		Method:        p.Method,
		PaidAt:        now,
	}, nil
}

// inTx wraps store.InTx so that begin and commit failures are reported as
// step errors as well.
func (e *Engine) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	err := e.store.InTx(ctx, fn)
	if err == nil {
		return nil
	}
	var se *StepError
	if errors.As(err, &se) || errors.Is(err, database.ErrNotInitialized) {
		return err
	}
	return stepErr(StepTransaction, err)
}

// locked runs fn while holding the showtime's commit lock. The lock is
// released before any notification goes out.
func (e *Engine) locked(showtimeID int64, fn func() error) error {
	unlock := e.locks.Lock(showtimeID)
	defer unlock()
	return fn()
}

// retryTokens repeats fn while it fails on a token collision, up to the
// configured number of attempts.
func (e *Engine) retryTokens(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= e.tokenAttempts; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		e.log.Warn("token collision, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return err
}

func (e *Engine) notify(ctx context.Context, r Receipt) {
	if e.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := e.notifier.BookingConfirmed(nctx, r); err != nil {
		e.log.Warn("booking event not published",
			zap.Int64("booking_id", r.BookingID),
			zap.Error(err))
	}
}
