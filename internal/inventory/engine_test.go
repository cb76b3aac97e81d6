package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

func TestCommit_ThreeSeatsOfEighty(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine()

	rec, err := e.Commit(context.Background(), CommitRequest{
		UserID:     f.user,
		ShowtimeID: st.ID,
		MovieID:    st.MovieID,
		SeatIDs:    f.seats(t, st.ID, "C7", "C5", "C6"),
	})
	require.NoError(t, err)

	assert.Regexp(t, ReferencePattern, rec.Reference)
	assert.Equal(t, int64(1200), rec.PriceCents)
	assert.Equal(t, int64(3600), rec.TotalCents)
	assert.Equal(t, model.BookingConfirmed, rec.Status)
	assert.Equal(t, model.PaymentPending, rec.PaymentStatus)
	assert.Empty(t, rec.TransactionID)
	assert.Equal(t, []string{"C5", "C6", "C7"}, rec.SeatLabels())
	assert.Equal(t, showDate, rec.ShowDate)
	assert.True(t, fixedNow.Equal(rec.BookedAt))

	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 77, counter)
	assert.Equal(t, 77, flags)
	assert.Equal(t, 3, f.count(t, "SELECT COUNT(*) FROM booking_seats WHERE booking_id = ?", rec.BookingID))
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM payments"))

	// the other showtimes are untouched
	counter, _ = f.available(t, f.showtimes[1].ID)
	assert.Equal(t, 80, counter)

	dates, err := repository.NewShowtimeRepo(f.store).AvailableDates(context.Background(), st.MovieID, showDate)
	require.NoError(t, err)
	assert.Equal(t, []string{showDate}, dates)

	stored, err := repository.NewBookingRepo(f.store).GetByReference(context.Background(), rec.Reference)
	require.NoError(t, err)
	assert.Equal(t, rec.BookingID, stored.ID)
	assert.Equal(t, int64(3600), stored.TotalAmountCents)
	assert.Equal(t, 3, stored.TotalSeats)
}

func TestCheckout_CommitsAndPaysTogether(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine()

	rec, err := e.Checkout(context.Background(), CommitRequest{
		UserID:     f.user,
		ShowtimeID: st.ID,
		SeatIDs:    f.seats(t, st.ID, "A1", "A2"),
	}, PaymentRequest{AmountCents: 2400, Method: "Card"})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentCompleted, rec.PaymentStatus)
	assert.Regexp(t, TransactionPattern, rec.TransactionID)
	assert.Equal(t, st.MovieID, rec.MovieID)

	p, err := repository.NewPaymentRepo(f.store).GetByBooking(context.Background(), rec.BookingID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, rec.TransactionID, p.TransactionID)
	assert.Equal(t, int64(2400), p.AmountCents)
	assert.Equal(t, model.MethodCard, p.Method)
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM bookings WHERE payment_status = 'completed'"))
}

func TestCheckout_AmountMismatchRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine()

	_, err := e.Checkout(context.Background(), CommitRequest{
		UserID:     f.user,
		ShowtimeID: st.ID,
		SeatIDs:    f.seats(t, st.ID, "A1", "A2"),
	}, PaymentRequest{AmountCents: 1200, Method: model.MethodWallet})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, KindValidation, KindOf(err))

	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 80, counter)
	assert.Equal(t, 80, flags)
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM booking_seats"))
}

func TestCommit_SoldOutBeforeAnyWrite(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	db, _ := f.store.DB()
	_, err := db.Exec("UPDATE showtimes SET available_seats = 0 WHERE id = ?", st.ID)
	require.NoError(t, err)

	_, err = f.engine().Commit(context.Background(), CommitRequest{
		UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A1"),
	})
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.False(t, IsRetryable(err))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StepLoadShowtime, se.Step)

	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Equal(t, 80, f.count(t, "SELECT COUNT(*) FROM seats WHERE showtime_id = ? AND is_available = 1", st.ID))
}

func TestCommit_MoreSeatsThanRemain(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	db, _ := f.store.DB()
	_, err := db.Exec("UPDATE showtimes SET available_seats = 2 WHERE id = ?", st.ID)
	require.NoError(t, err)

	_, err = f.engine().Commit(context.Background(), CommitRequest{
		UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A1", "A2", "A3"),
	})
	assert.ErrorIs(t, err, ErrInsufficientSeats)
	assert.Equal(t, 80, f.count(t, "SELECT COUNT(*) FROM seats WHERE showtime_id = ? AND is_available = 1", st.ID))
	assert.Equal(t, 2, f.count(t, "SELECT available_seats FROM showtimes WHERE id = ?", st.ID))
}

func TestCommit_TakenSeatIsReported(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine()
	ids := f.seats(t, st.ID, "D4", "D5")

	_, err := e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: ids[:1]})
	require.NoError(t, err)

	_, err = e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: ids})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeatUnavailable)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, ids[:1], UnavailableSeats(err))

	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 79, counter)
	assert.Equal(t, 79, flags)
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM bookings"))
}

func TestCommit_RejectsSeatsOfAnotherShowtime(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	foreign := f.seats(t, f.showtimes[1].ID, "A1")

	_, err := f.engine().Commit(context.Background(), CommitRequest{
		UserID: f.user, ShowtimeID: st.ID, SeatIDs: append(f.seats(t, st.ID, "A1"), foreign...),
	})
	assert.ErrorIs(t, err, ErrForeignSeat)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = f.engine().Commit(context.Background(), CommitRequest{
		UserID: f.user, ShowtimeID: st.ID, SeatIDs: []int64{987654},
	})
	assert.ErrorIs(t, err, ErrForeignSeat)
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM bookings"))
}

func TestCommit_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	ids := f.seats(t, st.ID, "A1", "A2", "A3")
	e := f.engine(WithMaxSeats(2))

	cases := []struct {
		name string
		req  CommitRequest
		want error
	}{
		{"no user", CommitRequest{ShowtimeID: st.ID, SeatIDs: ids[:1]}, ErrMissingUser},
		{"no showtime", CommitRequest{UserID: f.user, SeatIDs: ids[:1]}, ErrMissingShowtime},
		{"no seats", CommitRequest{UserID: f.user, ShowtimeID: st.ID}, ErrNoSeats},
		{"non-positive seat", CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: []int64{ids[0], 0}}, ErrInvalidSeat},
		{"duplicate seat", CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: []int64{ids[0], ids[0]}}, ErrDuplicateSeat},
		{"too many seats", CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: ids}, ErrTooManySeats},
		{"wrong movie", CommitRequest{UserID: f.user, ShowtimeID: st.ID, MovieID: f.showtimes[2].MovieID, SeatIDs: ids[:1]}, ErrMovieMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Commit(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
	assert.Zero(t, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Equal(t, 2, e.MaxSeats())
}

func TestCommit_UnknownOrInactiveShowtime(t *testing.T) {
	f := newFixture(t)
	e := f.engine()
	st := f.showtimes[0]

	_, err := e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: 99999, SeatIDs: []int64{1}})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	db, _ := f.store.DB()
	_, err = db.Exec("UPDATE showtimes SET is_active = 0 WHERE id = ?", st.ID)
	require.NoError(t, err)
	_, err = e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A1")})
	assert.ErrorIs(t, err, ErrShowtimeNotFound)
}

func TestEngine_NotInitialized(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Commit(context.Background(), CommitRequest{UserID: 1, ShowtimeID: 1, SeatIDs: []int64{1}})
	assert.ErrorIs(t, err, database.ErrNotInitialized)
	assert.Equal(t, KindNotInitialized, KindOf(err))

	_, err = e.RecordPayment(context.Background(), 1, PaymentRequest{AmountCents: 100, Method: "card"})
	assert.ErrorIs(t, err, database.ErrNotInitialized)

	f := newFixture(t)
	e = f.engine()
	require.NoError(t, f.store.Close())
	_, err = e.Checkout(context.Background(), CommitRequest{UserID: 1, ShowtimeID: 1, SeatIDs: []int64{1}},
		PaymentRequest{AmountCents: 100, Method: "upi"})
	assert.ErrorIs(t, err, database.ErrNotInitialized)
}

func TestCommit_ConcurrentOverlappingRequestsHaveOneWinner(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine()
	labels := []string{"E1", "E2", "E3", "E4", "E5", "E6", "E7", "E8", "E9", "E10"}
	all := f.seats(t, st.ID, labels...)

	// every request contains E1 and one seat of its own
	const workers = 8
	var wins, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.Commit(context.Background(), CommitRequest{
				UserID: f.user, ShowtimeID: st.ID, SeatIDs: []int64{all[0], all[i+1]},
			})
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, ErrSeatUnavailable):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(workers-1), conflicts)
	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 78, counter)
	assert.Equal(t, 78, flags)
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM bookings"))
	assert.Equal(t, 2, f.count(t, "SELECT COUNT(*) FROM booking_seats"))
	assert.Zero(t, e.locks.size())
}

func TestCommit_ConcurrentDisjointRequestsAllSucceed(t *testing.T) {
	f := newFixture(t)
	e := f.engine()
	rows := []string{"A", "B", "C", "D", "E"}

	var reqs []CommitRequest
	for _, st := range f.showtimes[:2] {
		for _, row := range rows {
			reqs = append(reqs, CommitRequest{
				UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, row+"1", row+"2"),
			})
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(reqs))
	for _, req := range reqs {
		wg.Add(1)
		go func(req CommitRequest) {
			defer wg.Done()
			_, err := e.Commit(context.Background(), req)
			errs <- err
		}(req)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	for _, st := range f.showtimes[:2] {
		counter, flags := f.available(t, st.ID)
		assert.Equal(t, 70, counter)
		assert.Equal(t, 70, flags)
	}
	assert.Zero(t, e.locks.size())
}

func TestCommit_RetriesOnReferenceCollision(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	tokens := &scriptedTokens{refs: []string{"BK1", "BK1", "BK1", "BK2"}}
	e := f.engine(WithTokens(tokens))

	first, err := e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A1")})
	require.NoError(t, err)
	assert.Equal(t, "BK1", first.Reference)

	// two collisions, then a fresh reference on the third attempt
	second, err := e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A2")})
	require.NoError(t, err)
	assert.Equal(t, "BK2", second.Reference)

	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 78, counter)
	assert.Equal(t, 78, flags)
}

func TestCommit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	tokens := &scriptedTokens{refs: []string{"BK1", "BK1", "BK1", "BK1"}}
	e := f.engine(WithTokens(tokens), WithTokenAttempts(3))

	_, err := e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A1")})
	require.NoError(t, err)

	_, err = e.Commit(context.Background(), CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "A2")})
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, KindConflict, KindOf(err))

	var se *StepError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StepInsertBooking, se.Step)

	counter, flags := f.available(t, st.ID)
	assert.Equal(t, 79, counter)
	assert.Equal(t, 79, flags)
	assert.Equal(t, 1, f.count(t, "SELECT COUNT(*) FROM booking_seats"))
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	e := f.engine(WithTokens(&scriptedTokens{txns: []string{"TXN1", "TXN1", "TXN7"}}))
	ctx := context.Background()

	rec, err := e.Commit(ctx, CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "B1", "B2")})
	require.NoError(t, err)
	other, err := e.Commit(ctx, CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "B3")})
	require.NoError(t, err)

	_, err = e.RecordPayment(ctx, rec.BookingID, PaymentRequest{AmountCents: 2400, Method: "cash"})
	assert.ErrorIs(t, err, ErrInvalidMethod)
	_, err = e.RecordPayment(ctx, rec.BookingID, PaymentRequest{AmountCents: 0, Method: "card"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = e.RecordPayment(ctx, rec.BookingID, PaymentRequest{AmountCents: 1200, Method: "card"})
	assert.ErrorIs(t, err, ErrAmountMismatch)
	_, err = e.RecordPayment(ctx, 4242, PaymentRequest{AmountCents: 1200, Method: "card"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
	_, err = e.RecordPayment(ctx, 0, PaymentRequest{AmountCents: 1200, Method: "card"})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	p, err := e.RecordPayment(ctx, rec.BookingID, PaymentRequest{AmountCents: 2400, Method: "upi"})
	require.NoError(t, err)
	assert.Equal(t, "TXN1", p.TransactionID)
	assert.Equal(t, model.MethodUPI, p.Method)

	_, err = e.RecordPayment(ctx, rec.BookingID, PaymentRequest{AmountCents: 2400, Method: "upi"})
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, KindConflict, KindOf(err))

	// a colliding transaction id is retried with a fresh one
	p2, err := e.RecordPayment(ctx, other.BookingID, PaymentRequest{AmountCents: 1200, Method: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, "TXN7", p2.TransactionID)

	assert.Equal(t, 2, f.count(t, "SELECT COUNT(*) FROM payments"))
	assert.Equal(t, 2, f.count(t, "SELECT COUNT(*) FROM bookings WHERE payment_status = 'completed'"))
}

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []Receipt
	err      error
	onNotify func(Receipt)
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, r Receipt) error {
	n.mu.Lock()
	n.receipts = append(n.receipts, r)
	hook := n.onNotify
	n.onNotify = nil
	n.mu.Unlock()
	if hook != nil {
		hook(r)
	}
	return n.err
}

func TestCommit_NotifiesAfterReleasingTheLock(t *testing.T) {
	f := newFixture(t)
	st := f.showtimes[0]
	n := &recordingNotifier{err: errors.New("broker down")}
	e := f.engine(WithNotifier(n))
	ctx := context.Background()

	var nested error
	inner := f.seats(t, st.ID, "H10")
	// booking the same showtime from inside the notification would block
	// forever if the showtime lock were still held
	n.onNotify = func(Receipt) {
		_, nested = e.Commit(ctx, CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: inner})
	}

	rec, err := e.Commit(ctx, CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "H9")})
	require.NoError(t, err)
	require.NoError(t, nested)

	_, err = e.Commit(ctx, CommitRequest{UserID: f.user, ShowtimeID: st.ID, SeatIDs: f.seats(t, st.ID, "H9")})
	assert.ErrorIs(t, err, ErrSeatUnavailable)

	n.mu.Lock()
	defer n.mu.Unlock()
	// the outer receipt is recorded before the nested commit runs
	require.Len(t, n.receipts, 2)
	assert.Equal(t, rec.Reference, n.receipts[0].Reference)
	assert.Equal(t, []string{"H10"}, n.receipts[1].SeatLabels())
	assert.Zero(t, e.locks.size())
}
