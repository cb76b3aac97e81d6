package repository_test

import (
	"context"
	"database/sql"
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

const (
	day1 = "2025-06-01"
	day2 = "2025-06-02"
)

// seeded returns a store holding the full movie catalog with two days of
// two showtimes each, every showtime a 2x5 grid priced 12.00.
func seeded(t *testing.T) *database.Store {
	t.Helper()
	store := dbtest.Open(t)
	_, err := bootstrap.Run(context.Background(), store, bootstrap.Options{
		Days:        2,
		Slots:       []string{"10:00", "19:00"},
		Rows:        []string{"A", "B"},
		SeatsPerRow: 5,
		MinPrice:    12,
		MaxPrice:    12,
		Now:         func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return store
}

func newUser(t *testing.T, store *database.Store, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, PasswordHash: "hash", FullName: "Test User"}
	require.NoError(t, repository.NewUserRepo(store).Create(context.Background(), u))
	return u
}

func movieByTitle(t *testing.T, store *database.Store, title string) model.Movie {
	t.Helper()
	list, err := repository.NewMovieRepo(store).Search(context.Background(), title)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	return list[0]
}

func inTx(t *testing.T, store *database.Store, fn func(tx *sql.Tx) error) error {
	t.Helper()
	return store.InTx(context.Background(), fn)
}

func exec(t *testing.T, store *database.Store, q string, args ...interface{}) {
	t.Helper()
	db, err := store.DB()
	require.NoError(t, err)
	_, err = db.Exec(q, args...)
	require.NoError(t, err)
}
