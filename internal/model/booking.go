package model

import "time"

// BookingStatus values stored in bookings.status.
const (
	BookingConfirmed = "confirmed"
	BookingPending   = "pending"
)

// Payment status values stored in bookings.payment_status and
// payments.status.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

// Payment methods accepted at checkout.
const (
	MethodCard   = "card"
	MethodWallet = "wallet"
	MethodUPI    = "upi"
)

// Booking is a committed purchase of one or more seats of one showtime by
// one user. Reference is the human-facing identifier printed on tickets.
type Booking struct {
	ID               int64
	UserID           int64
	MovieID          int64
	ShowtimeID       int64
	BookingDate      time.Time
	TotalSeats       int
	TotalAmountCents int64
	Status           string
	PaymentStatus    string
	Reference        string
}

// BookingSeat links a booking to one of the seats it claimed.
type BookingSeat struct {
	ID        int64
	BookingID int64
	SeatID    int64
}

// Payment records a (simulated) settlement of a booking.
type Payment struct {
	ID            int64
	BookingID     int64
	AmountCents   int64
	Method        string
	PaymentDate   time.Time
	TransactionID string
	Status        string
}

// BookingDetail is a booking joined with the movie and showtime it is for,
// plus the seats it holds. It backs the bookings list and ticket views.
type BookingDetail struct {
	Booking
	MovieTitle   string
	PosterURL    string
	Genre        string
	ShowDate     string
	ShowTime     string
	ScreenNumber int
	Seats        []Seat
}
