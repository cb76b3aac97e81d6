// Package queue defines message payloads exchanged over the message broker
// together with the publisher used by the server and the consumer run by
// the booking-logger.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/moviego/internal/inventory"
)

// BookingQueue is the durable queue booking events are routed to.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a booking has been committed. It
// carries enough information for downstream consumers to log or notify
// without querying the primary database.
type BookingConfirmedEvent struct {
	EventID          string   `json:"event_id"`
	BookingID        int64    `json:"booking_id"`
	Reference        string   `json:"booking_reference"`
	UserID           int64    `json:"user_id"`
	MovieID          int64    `json:"movie_id"`
	ShowtimeID       int64    `json:"showtime_id"`
	ShowDate         string   `json:"show_date"`
	ShowTime         string   `json:"show_time"`
	ScreenNumber     int      `json:"screen_number"`
	SeatLabels       []string `json:"seats"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	PaymentStatus    string   `json:"payment_status"`
	TransactionID    string   `json:"transaction_id,omitempty"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// NewBookingConfirmed builds the event for a committed booking.
func NewBookingConfirmed(r inventory.Receipt) BookingConfirmedEvent {
	at := r.BookedAt
	if at.IsZero() {
		at = time.Now()
	}
	return BookingConfirmedEvent{
		EventID:          uuid.NewString(),
		BookingID:        r.BookingID,
		Reference:        r.Reference,
		UserID:           r.UserID,
		MovieID:          r.MovieID,
		ShowtimeID:       r.ShowtimeID,
		ShowDate:         r.ShowDate,
		ShowTime:         r.ShowTime,
		ScreenNumber:     r.ScreenNumber,
		SeatLabels:       r.SeatLabels(),
		TotalAmountCents: r.TotalCents,
		PaymentStatus:    r.PaymentStatus,
		TransactionID:    r.TransactionID,
		ConfirmedAt:      at.UTC().Format(time.RFC3339),
	}
}

// LogLine renders the event as the single line appended to the booking log.
func (ev BookingConfirmedEvent) LogLine() string {
	return fmt.Sprintf("[%s] Booking confirmed | ref=%s | booking_id=%d | user_id=%d | movie_id=%d | showtime_id=%d | when=\"%s %s\" | screen=%d | total=%d cents | payment=%s | seats=[%s]\n",
		ev.ConfirmedAt, ev.Reference, ev.BookingID, ev.UserID, ev.MovieID, ev.ShowtimeID,
		ev.ShowDate, ev.ShowTime, ev.ScreenNumber, ev.TotalAmountCents, ev.PaymentStatus,
		strings.Join(ev.SeatLabels, ","))
}
