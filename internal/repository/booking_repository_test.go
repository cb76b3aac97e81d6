package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

// book inserts a booking with its seat links directly, bypassing the
// inventory checks.
func book(t *testing.T, store *database.Store, userID int64, st model.Showtime, ref string, at time.Time, seatIDs ...int64) model.Booking {
	t.Helper()
	b := model.Booking{
		UserID:           userID,
		MovieID:          st.MovieID,
		ShowtimeID:       st.ID,
		BookingDate:      at,
		TotalSeats:       len(seatIDs),
		TotalAmountCents: st.PriceCents * int64(len(seatIDs)),
		Status:           model.BookingConfirmed,
		PaymentStatus:    model.PaymentPending,
		Reference:        ref,
	}
	bookings := repository.NewBookingRepo(store)
	require.NoError(t, store.InTx(context.Background(), func(tx *sql.Tx) error {
		if err := bookings.CreateTx(context.Background(), tx, &b); err != nil {
			return err
		}
		return bookings.CreateSeatsBulkTx(context.Background(), tx, b.ID, seatIDs)
	}))
	return b
}

func showtimesOf(t *testing.T, store *database.Store, title string) []model.Showtime {
	t.Helper()
	m := movieByTitle(t, store, title)
	list, err := repository.NewShowtimeRepo(store).ListByMovie(context.Background(), m.ID, day1)
	require.NoError(t, err)
	return list
}

func seatsOf(t *testing.T, store *database.Store, showtimeID int64) []model.Seat {
	t.Helper()
	list, err := repository.NewSeatRepo(store).ListByShowtime(context.Background(), showtimeID)
	require.NoError(t, err)
	return list
}

func TestBookingRepo_DuplicateReference(t *testing.T) {
	store := seeded(t)
	u := newUser(t, store, "dupref@example.com")
	st := showtimesOf(t, store, "Inception")[0]
	grid := seatsOf(t, store, st.ID)
	book(t, store, u.ID, st, "BK1", fixedNow, grid[0].ID)

	b := model.Booking{
		UserID: u.ID, MovieID: st.MovieID, ShowtimeID: st.ID, BookingDate: fixedNow,
		TotalSeats: 1, TotalAmountCents: 1200, Status: model.BookingConfirmed,
		PaymentStatus: model.PaymentPending, Reference: "BK1",
	}
	err := store.InTx(context.Background(), func(tx *sql.Tx) error {
		return repository.NewBookingRepo(store).CreateTx(context.Background(), tx, &b)
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestBookingRepo_DetailAndList(t *testing.T) {
	store := seeded(t)
	bookings := repository.NewBookingRepo(store)
	ctx := context.Background()
	u := newUser(t, store, "list@example.com")
	other := newUser(t, store, "other@example.com")

	inception := showtimesOf(t, store, "Inception")[0]
	dark := showtimesOf(t, store, "The Dark Knight")[1]
	g1 := seatsOf(t, store, inception.ID)
	g2 := seatsOf(t, store, dark.ID)

	first := book(t, store, u.ID, inception, "BK100", fixedNow, g1[2].ID, g1[1].ID)
	second := book(t, store, u.ID, dark, "BK200", fixedNow.Add(time.Hour), g2[0].ID)
	book(t, store, other.ID, dark, "BK300", fixedNow.Add(2*time.Hour), g2[1].ID)

	list, err := bookings.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, "The Dark Knight", list[0].MovieTitle)
	assert.Equal(t, dark.ShowTime, list[0].ShowTime)
	require.Len(t, list[0].Seats, 1)
	assert.Equal(t, first.ID, list[1].ID)
	require.Len(t, list[1].Seats, 2)
	assert.Equal(t, "A2", list[1].Seats[0].Label())
	assert.Equal(t, "A3", list[1].Seats[1].Label())
	assert.Equal(t, int64(2400), list[1].TotalAmountCents)
	assert.True(t, fixedNow.Equal(list[1].BookingDate))

	byRef, err := bookings.GetByReference(ctx, "BK100")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byRef.ID)
	assert.Equal(t, "Inception", byRef.MovieTitle)
	assert.Len(t, byRef.Seats, 2)

	_, err = bookings.GetByReference(ctx, "BK999")
	assert.ErrorIs(t, err, repository.ErrBookingNotFound)
	_, err = bookings.GetByID(ctx, 424242)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	none, err := bookings.ListByUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)

	stats, err := bookings.StatsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{TotalBookings: 2, MoviesWatched: 2, TotalSpentCents: 3600}, stats)

	empty, err := bookings.StatsByUser(ctx, 999)
	require.NoError(t, err)
	assert.Equal(t, model.UserStats{}, empty)
}

func TestBookingRepo_UpdatePaymentStatusIsConditional(t *testing.T) {
	store := seeded(t)
	bookings := repository.NewBookingRepo(store)
	ctx := context.Background()
	u := newUser(t, store, "pay@example.com")
	st := showtimesOf(t, store, "Inception")[0]
	b := book(t, store, u.ID, st, "BK1", fixedNow, seatsOf(t, store, st.ID)[0].ID)

	update := func(id int64) error {
		return store.InTx(ctx, func(tx *sql.Tx) error {
			return bookings.UpdatePaymentStatusTx(ctx, tx, id, model.PaymentPending, model.PaymentCompleted)
		})
	}
	require.NoError(t, update(b.ID))
	assert.ErrorIs(t, update(b.ID), repository.ErrConflict)
	assert.ErrorIs(t, update(9999), repository.ErrBookingNotFound)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
}

func TestPaymentRepo_CreateAndLookup(t *testing.T) {
	store := seeded(t)
	payments := repository.NewPaymentRepo(store)
	ctx := context.Background()
	u := newUser(t, store, "txn@example.com")
	st := showtimesOf(t, store, "Inception")[0]
	grid := seatsOf(t, store, st.ID)
	b1 := book(t, store, u.ID, st, "BK1", fixedNow, grid[0].ID)
	b2 := book(t, store, u.ID, st, "BK2", fixedNow, grid[1].ID)

	none, err := payments.GetByBooking(ctx, b1.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	p := model.Payment{BookingID: b1.ID, AmountCents: 1200, Method: model.MethodCard,
		PaymentDate: fixedNow, TransactionID: "TXN1", Status: model.PaymentCompleted}
	require.NoError(t, store.InTx(ctx, func(tx *sql.Tx) error { return payments.CreateTx(ctx, tx, &p) }))
	assert.Positive(t, p.ID)

	dup := model.Payment{BookingID: b2.ID, AmountCents: 1200, Method: model.MethodUPI,
		PaymentDate: fixedNow, TransactionID: "TXN1", Status: model.PaymentCompleted}
	err = store.InTx(ctx, func(tx *sql.Tx) error { return payments.CreateTx(ctx, tx, &dup) })
	assert.ErrorIs(t, err, repository.ErrDuplicateTransaction)

	got, err := payments.GetByBooking(ctx, b1.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "TXN1", got.TransactionID)
	assert.Equal(t, model.MethodCard, got.Method)
	assert.True(t, fixedNow.Equal(got.PaymentDate))
}
