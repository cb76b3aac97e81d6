package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/repository"
)

// ErrMovieNotFound is returned for unknown or inactive movies.
var ErrMovieNotFound = fmt.Errorf("movie %w", repository.ErrNotFound)

// SeatRow is one row of a seat map.
type SeatRow struct {
	Row   string
	Seats []model.Seat
}

// SeatMap is a showtime with its seats grouped by row.
type SeatMap struct {
	Showtime  model.Showtime
	Rows      []SeatRow
	Available int
}

// CatalogService answers the browsing questions of the client: movies,
// dates, showtimes, seat maps and the user's own bookings.
type CatalogService struct {
	movies    *repository.MovieRepo
	showtimes *repository.ShowtimeRepo
	seats     *repository.SeatRepo
	bookings  *repository.BookingRepo
	Clock     func() time.Time
}

func NewCatalogService(movies *repository.MovieRepo, showtimes *repository.ShowtimeRepo, seats *repository.SeatRepo, bookings *repository.BookingRepo) *CatalogService {
	return &CatalogService{movies: movies, showtimes: showtimes, seats: seats, bookings: bookings, Clock: time.Now}
}

func (s *CatalogService) today() string { return s.Clock().UTC().Format("2006-01-02") }

// Movies lists active movies. A search term matches title or genre; a genre
// narrows the result further. "All" or an empty genre applies no filter.
func (s *CatalogService) Movies(ctx context.Context, query, genre string) ([]model.Movie, error) {
	genre = strings.TrimSpace(genre)
	if strings.EqualFold(genre, "all") {
		genre = ""
	}
	var (
		list []model.Movie
		err  error
	)
	if strings.TrimSpace(query) != "" {
		list, err = s.movies.Search(ctx, query)
	} else {
		list, err = s.movies.FilterByGenre(ctx, genre)
		genre = ""
	}
	if err != nil {
		return nil, err
	}
	if genre == "" {
		return list, nil
	}
	out := list[:0]
	for _, m := range list {
		if strings.Contains(strings.ToLower(m.Genre), strings.ToLower(genre)) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Genres returns the distinct genres of active movies, sorted.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	list, err := s.movies.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, m := range list {
		for _, g := range strings.Split(m.Genre, ",") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, ok := seen[g]; !ok {
				seen[g] = struct{}{}
				out = append(out, g)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Movie returns an active movie or ErrMovieNotFound.
func (s *CatalogService) Movie(ctx context.Context, id int64) (*model.Movie, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsActive {
		return nil, ErrMovieNotFound
	}
	return m, nil
}

// Dates lists the upcoming dates on which the movie still has free seats.
func (s *CatalogService) Dates(ctx context.Context, movieID int64) ([]string, error) {
	if _, err := s.Movie(ctx, movieID); err != nil {
		return nil, err
	}
	return s.showtimes.AvailableDates(ctx, movieID, s.today())
}

// Showtimes lists the movie's showtimes on date, or every upcoming showtime
// when date is empty.
func (s *CatalogService) Showtimes(ctx context.Context, movieID int64, date string) ([]model.Showtime, error) {
	if _, err := s.Movie(ctx, movieID); err != nil {
		return nil, err
	}
	if date == "" {
		return s.showtimes.ListByMovie(ctx, movieID, s.today())
	}
	return s.showtimes.ListByMovieAndDate(ctx, movieID, date)
}

// Showtime returns an active showtime.
func (s *CatalogService) Showtime(ctx context.Context, id int64) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsActive {
		return nil, repository.ErrShowtimeNotFound
	}
	return st, nil
}

// SeatMap returns the showtime's seat grid grouped by row.
func (s *CatalogService) SeatMap(ctx context.Context, showtimeID int64) (*SeatMap, error) {
	st, err := s.Showtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	sm := &SeatMap{Showtime: *st, Rows: make([]SeatRow, 0)}
	for _, seat := range seats {
		if n := len(sm.Rows); n == 0 || sm.Rows[n-1].Row != seat.Row {
			sm.Rows = append(sm.Rows, SeatRow{Row: seat.Row})
		}
		last := &sm.Rows[len(sm.Rows)-1]
		last.Seats = append(last.Seats, seat)
		if seat.IsAvailable {
			sm.Available++
		}
	}
	return sm, nil
}

// Bookings lists the user's bookings, newest first.
func (s *CatalogService) Bookings(ctx context.Context, userID int64) ([]model.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// Booking returns one of the user's bookings. Bookings of other users are
// reported as not found.
func (s *CatalogService) Booking(ctx context.Context, userID, bookingID int64) (*model.BookingDetail, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}

// BookingByReference is Booking keyed by the public reference.
func (s *CatalogService) BookingByReference(ctx context.Context, userID int64, ref string) (*model.BookingDetail, error) {
	b, err := s.bookings.GetByReference(ctx, strings.ToUpper(strings.TrimSpace(ref)))
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, repository.ErrBookingNotFound
	}
	return b, nil
}
