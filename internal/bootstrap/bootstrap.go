// Package bootstrap prepares a fresh database: it creates the schema and,
// when the catalog is empty, seeds movies, a week of showtimes and their
// seat grids in a single transaction.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

// Options controls seeding. Zero values fall back to Defaults().
type Options struct {
	Days        int      // number of consecutive days, starting today
	Slots       []string // HH:MM start times per movie per day
	Rows        []string // seat row labels
	SeatsPerRow int
	Screens     int   // screens are numbered 1..Screens
	MinPrice    int64 // whole currency units, inclusive
	MaxPrice    int64 // whole currency units, inclusive
	Movies      []model.Movie
	Now         func() time.Time
	Rand        *rand.Rand
}

// Defaults returns the standard seeding options.
func Defaults() Options {
	return Options{
		Days:        7,
		Slots:       []string{"10:00", "13:00", "16:00", "19:00", "22:00"},
		Rows:        []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		SeatsPerRow: 10,
		Screens:     5,
		MinPrice:    10,
		MaxPrice:    14,
		Movies:      Catalog,
		Now:         time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := Defaults()
	if o.Days <= 0 {
		o.Days = d.Days
	}
	if len(o.Slots) == 0 {
		o.Slots = d.Slots
	}
	if len(o.Rows) == 0 {
		o.Rows = d.Rows
	}
	if o.SeatsPerRow <= 0 {
		o.SeatsPerRow = d.SeatsPerRow
	}
	if o.Screens <= 0 {
		o.Screens = d.Screens
	}
	if o.MinPrice <= 0 {
		o.MinPrice = d.MinPrice
	}
	if o.MaxPrice < o.MinPrice {
		o.MaxPrice = o.MinPrice + (d.MaxPrice - d.MinPrice)
	}
	if len(o.Movies) == 0 {
		o.Movies = d.Movies
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(uint64(o.Now().UnixNano()), 0x6d6f7669))
	}
	return o
}

// Report describes what Run did.
type Report struct {
	Seeded    bool
	Movies    int
	Showtimes int
	Seats     int
}

// Run migrates the schema and seeds an empty catalog. Any failure is
// returned as a *database.InitError and leaves no partial seed behind.
func Run(ctx context.Context, store *database.Store, opts Options) (Report, error) {
	if _, err := store.DB(); err != nil {
		return Report{}, &database.InitError{Step: "open", Err: err}
	}
	if err := database.Migrate(ctx, store); err != nil {
		return Report{}, &database.InitError{Step: "migrate", Err: err}
	}

	movies := repository.NewMovieRepo(store)
	n, err := movies.Count(ctx)
	if err != nil {
		return Report{}, &database.InitError{Step: "count movies", Err: err}
	}
	if n > 0 {
		return Report{}, nil
	}

	opts = opts.withDefaults()
	movies.Clock = opts.Now
	s := seeder{
		opts:      opts,
		movies:    movies,
		showtimes: repository.NewShowtimeRepo(store),
		seats:     repository.NewSeatRepo(store),
	}
	var rep Report
	err = store.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		rep, err = s.seed(ctx, tx)
		return err
	})
	if err != nil {
		var ie *database.InitError
		if errors.As(err, &ie) {
			return Report{}, err
		}
		return Report{}, &database.InitError{Step: "seed", Err: err}
	}
	rep.Seeded = true
	return rep, nil
}

type seeder struct {
	opts      Options
	movies    *repository.MovieRepo
	showtimes *repository.ShowtimeRepo
	seats     *repository.SeatRepo
}

func (s seeder) seed(ctx context.Context, tx *sql.Tx) (Report, error) {
	var rep Report
	ids := make([]int64, 0, len(s.opts.Movies))
	for _, m := range s.opts.Movies {
		m := m
		if err := s.movies.CreateTx(ctx, tx, &m); err != nil {
			return rep, &database.InitError{Step: "seed movies", Err: err}
		}
		ids = append(ids, m.ID)
		rep.Movies++
	}

	gridSize := len(s.opts.Rows) * s.opts.SeatsPerRow
	today := s.opts.Now().UTC()
	for day := 0; day < s.opts.Days; day++ {
		date := today.AddDate(0, 0, day).Format("2006-01-02")
		for _, movieID := range ids {
			for _, slot := range s.opts.Slots {
				st := model.Showtime{
					MovieID:        movieID,
					ShowDate:       date,
					ShowTime:       slot,
					ScreenNumber:   1 + s.opts.Rand.IntN(s.opts.Screens),
					AvailableSeats: gridSize,
					PriceCents:     (s.opts.MinPrice + s.opts.Rand.Int64N(s.opts.MaxPrice-s.opts.MinPrice+1)) * 100,
					IsActive:       true,
				}
				if err := s.showtimes.CreateTx(ctx, tx, &st); err != nil {
					return rep, &database.InitError{Step: "seed showtimes", Err: err}
				}
				if err := s.seats.CreateBulkTx(ctx, tx, s.grid(st.ID)); err != nil {
					return rep, &database.InitError{Step: "seed seats", Err: err}
				}
				rep.Showtimes++
				rep.Seats += gridSize
			}
		}
	}
	return rep, nil
}

func (s seeder) grid(showtimeID int64) []model.Seat {
	seats := make([]model.Seat, 0, len(s.opts.Rows)*s.opts.SeatsPerRow)
	for _, row := range s.opts.Rows {
		for n := 1; n <= s.opts.SeatsPerRow; n++ {
			seats = append(seats, model.Seat{ShowtimeID: showtimeID, Row: row, Number: n, IsAvailable: true})
		}
	}
	return seats
}
