package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/repository"
)

func TestShowtimeRepo_Listings(t *testing.T) {
	store := seeded(t)
	showtimes := repository.NewShowtimeRepo(store)
	ctx := context.Background()
	m := movieByTitle(t, store, "Inception")

	all, err := showtimes.ListByMovie(ctx, m.ID, day1)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, day1, all[0].ShowDate)
	assert.Equal(t, "10:00", all[0].ShowTime)
	assert.Equal(t, day2, all[3].ShowDate)
	assert.Equal(t, "19:00", all[3].ShowTime)
	for _, st := range all {
		assert.Equal(t, 10, st.AvailableSeats)
		assert.Equal(t, int64(1200), st.PriceCents)
		assert.True(t, st.IsActive)
	}

	later, err := showtimes.ListByMovie(ctx, m.ID, day2)
	require.NoError(t, err)
	assert.Len(t, later, 2)

	onDay, err := showtimes.ListByMovieAndDate(ctx, m.ID, day1)
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	got, err := showtimes.GetByID(ctx, all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0], *got)

	_, err = showtimes.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, repository.ErrShowtimeNotFound)
}

func TestShowtimeRepo_AvailableDatesSkipsSoldOutDays(t *testing.T) {
	store := seeded(t)
	showtimes := repository.NewShowtimeRepo(store)
	ctx := context.Background()
	m := movieByTitle(t, store, "Inception")

	dates, err := showtimes.AvailableDates(ctx, m.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, []string{day1, day2}, dates)

	exec(t, store, "UPDATE showtimes SET available_seats = 0 WHERE movie_id = ? AND show_date = ?", m.ID, day1)
	dates, err = showtimes.AvailableDates(ctx, m.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, []string{day2}, dates)

	// one open showtime is enough to list the date
	exec(t, store, "UPDATE showtimes SET available_seats = 1 WHERE movie_id = ? AND show_date = ? AND show_time = '19:00'", m.ID, day1)
	dates, err = showtimes.AvailableDates(ctx, m.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, []string{day1, day2}, dates)

	dates, err = showtimes.AvailableDates(ctx, m.ID, "2025-07-01")
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestShowtimeRepo_DecrementGuard(t *testing.T) {
	store := seeded(t)
	showtimes := repository.NewShowtimeRepo(store)
	ctx := context.Background()
	m := movieByTitle(t, store, "Inception")
	list, err := showtimes.ListByMovie(ctx, m.ID, day1)
	require.NoError(t, err)
	id := list[0].ID

	require.NoError(t, inTx(t, store, func(tx *sql.Tx) error {
		return showtimes.DecrementAvailableTx(ctx, tx, id, 7)
	}))
	err = inTx(t, store, func(tx *sql.Tx) error {
		return showtimes.DecrementAvailableTx(ctx, tx, id, 4)
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := showtimes.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.AvailableSeats)
}

func TestSeatRepo_ClaimOnlyTakesAvailableSeats(t *testing.T) {
	store := seeded(t)
	seats := repository.NewSeatRepo(store)
	ctx := context.Background()
	m := movieByTitle(t, store, "Inception")
	list, err := repository.NewShowtimeRepo(store).ListByMovie(ctx, m.ID, day1)
	require.NoError(t, err)
	stID := list[0].ID

	grid, err := seats.ListByShowtime(ctx, stID)
	require.NoError(t, err)
	require.Len(t, grid, 10)
	assert.Equal(t, "A1", grid[0].Label())
	assert.Equal(t, "B5", grid[9].Label())

	a1, a2, a3 := grid[0].ID, grid[1].ID, grid[2].ID
	var claimed int64
	require.NoError(t, inTx(t, store, func(tx *sql.Tx) error {
		claimed, err = seats.ClaimTx(ctx, tx, stID, []int64{a1, a2})
		return err
	}))
	assert.Equal(t, int64(2), claimed)

	require.NoError(t, inTx(t, store, func(tx *sql.Tx) error {
		claimed, err = seats.ClaimTx(ctx, tx, stID, []int64{a2, a3})
		return err
	}))
	assert.Equal(t, int64(1), claimed)

	// seats of another showtime are never touched
	require.NoError(t, inTx(t, store, func(tx *sql.Tx) error {
		claimed, err = seats.ClaimTx(ctx, tx, list[1].ID, []int64{grid[4].ID})
		return err
	}))
	assert.Zero(t, claimed)

	n, err := seats.CountAvailable(ctx, stID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	require.NoError(t, inTx(t, store, func(tx *sql.Tx) error {
		got, err := seats.ListByIDsTx(ctx, tx, []int64{a3, a1, 999999})
		require.NoError(t, err)
		assert.Len(t, got, 2)
		return nil
	}))
}
