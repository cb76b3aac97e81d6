package inventory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/moviego/internal/bootstrap"
	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/database/dbtest"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

const showDate = "2025-06-01"

// fixture is a store with two movies, each with a 10:00 and a 19:00
// showtime of 80 seats (rows A-H, 10 per row) at 12.00.
type fixture struct {
	store     *database.Store
	user      int64
	movies    []model.Movie
	showtimes []model.Showtime // [0] is the first movie at 10:00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := dbtest.Open(t)
	ctx := context.Background()
	_, err := bootstrap.Run(ctx, store, bootstrap.Options{
		Days:        1,
		Slots:       []string{"10:00", "19:00"},
		SeatsPerRow: 10,
		MinPrice:    12,
		MaxPrice:    12,
		Movies:      bootstrap.Catalog[:2],
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	f := &fixture{store: store}
	f.movies, err = repository.NewMovieRepo(store).ListActive(ctx)
	require.NoError(t, err)
	for _, m := range bootstrap.Catalog[:2] {
		for _, got := range f.movies {
			if got.Title == m.Title {
				sts, err := repository.NewShowtimeRepo(store).ListByMovie(ctx, got.ID, showDate)
				require.NoError(t, err)
				f.showtimes = append(f.showtimes, sts...)
			}
		}
	}
	require.Len(t, f.showtimes, 4)

	u := &model.User{Email: "buyer@example.com", PasswordHash: "h", FullName: "Buyer"}
	require.NoError(t, repository.NewUserRepo(store).Create(ctx, u))
	f.user = u.ID
	return f
}

func (f *fixture) engine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewEngine(f.store, opts...)
}

// seats returns the ids of the given labels ("A1", "C7") of a showtime.
func (f *fixture) seats(t *testing.T, showtimeID int64, labels ...string) []int64 {
	t.Helper()
	grid, err := repository.NewSeatRepo(f.store).ListByShowtime(context.Background(), showtimeID)
	require.NoError(t, err)
	byLabel := make(map[string]int64, len(grid))
	for _, s := range grid {
		byLabel[s.Label()] = s.ID
	}
	ids := make([]int64, len(labels))
	for i, l := range labels {
		id, ok := byLabel[l]
		require.True(t, ok, l)
		ids[i] = id
	}
	return ids
}

func (f *fixture) count(t *testing.T, q string, args ...interface{}) int {
	t.Helper()
	db, err := f.store.DB()
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}

func (f *fixture) available(t *testing.T, showtimeID int64) (counter, flags int) {
	t.Helper()
	counter = f.count(t, "SELECT available_seats FROM showtimes WHERE id = ?", showtimeID)
	flags = f.count(t, "SELECT COUNT(*) FROM seats WHERE showtime_id = ? AND is_available = 1", showtimeID)
	return counter, flags
}

// scriptedTokens replays fixed tokens and then falls back to numbered ones.
type scriptedTokens struct {
	mu   sync.Mutex
	refs []string
	txns []string
	n    int
}

func (s *scriptedTokens) BookingReference(time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.refs) > 0 {
		r := s.refs[0]
		s.refs = s.refs[1:]
		return r, nil
	}
	s.n++
	return fmt.Sprintf("BK9%d", s.n), nil
}

func (s *scriptedTokens) TransactionID(time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.txns) > 0 {
		r := s.txns[0]
		s.txns = s.txns[1:]
		return r, nil
	}
	s.n++
	return fmt.Sprintf("TXN9%d", s.n), nil
}
