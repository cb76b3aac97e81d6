package model

// Showtime is one screening of a movie on a date at a time on a screen.
// AvailableSeats mirrors the number of seats of the showtime whose
// IsAvailable flag is still set; booking keeps the two in step.
type Showtime struct {
	ID             int64
	MovieID        int64
	ShowDate       string // YYYY-MM-DD
	ShowTime       string // HH:MM
	ScreenNumber   int
	AvailableSeats int
	PriceCents     int64 // price per seat
	IsActive       bool
}
