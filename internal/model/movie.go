package model

import "time"

// Movie is a catalog entry from the `movies` table. Only active movies are
// offered for browsing and booking.
type Movie struct {
	ID          int64
	Title       string
	Genre       string // comma separated, e.g. "Sci-Fi, Thriller"
	DurationMin int
	Rating      float64
	Synopsis    string
	PosterURL   string
	ReleaseDate string // YYYY-MM-DD
	Language    string
	Director    string
	Cast        string // comma separated names
	IsActive    bool
	CreatedAt   time.Time
}
