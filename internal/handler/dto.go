package handler

import (
	"fmt"
	"time"

	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/model"
	"github.com/iliyamo/moviego/internal/service"
)

// formatCents renders an amount like "36.00".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

type userResp struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(u *model.User) userResp {
	return userResp{ID: u.ID, Email: u.Email, FullName: u.FullName, Phone: u.Phone, Address: u.Address, CreatedAt: u.CreatedAt}
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    userResp  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toAuth(u *model.User, t service.Tokens) authResp {
	return authResp{
		User:    toUser(u),
		Access:  tokenPart{Token: t.Access.Token, Expires: t.Access.Exp},
		Refresh: tokenPart{Token: t.Refresh.Raw, Expires: t.Refresh.Exp},
	}
}

type statsResp struct {
	TotalBookings   int    `json:"total_bookings"`
	MoviesWatched   int    `json:"movies_watched"`
	TotalSpentCents int64  `json:"total_spent_cents"`
	TotalSpent      string `json:"total_spent"`
}

type movieResp struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Genre       string  `json:"genre"`
	DurationMin int     `json:"duration"`
	Rating      float64 `json:"rating"`
	Synopsis    string  `json:"synopsis"`
	PosterURL   string  `json:"poster_url"`
	ReleaseDate string  `json:"release_date"`
	Language    string  `json:"language"`
	Director    string  `json:"director"`
	Cast        string  `json:"cast"`
}

func toMovie(m model.Movie) movieResp {
	return movieResp{
		ID: m.ID, Title: m.Title, Genre: m.Genre, DurationMin: m.DurationMin, Rating: m.Rating,
		Synopsis: m.Synopsis, PosterURL: m.PosterURL, ReleaseDate: m.ReleaseDate,
		Language: m.Language, Director: m.Director, Cast: m.Cast,
	}
}

type showtimeResp struct {
	ID             int64  `json:"id"`
	MovieID        int64  `json:"movie_id"`
	ShowDate       string `json:"show_date"`
	ShowTime       string `json:"show_time"`
	ScreenNumber   int    `json:"screen_number"`
	AvailableSeats int    `json:"available_seats"`
	PriceCents     int64  `json:"price_cents"`
	Price          string `json:"price"`
}

func toShowtime(st model.Showtime) showtimeResp {
	return showtimeResp{
		ID: st.ID, MovieID: st.MovieID, ShowDate: st.ShowDate, ShowTime: st.ShowTime,
		ScreenNumber: st.ScreenNumber, AvailableSeats: st.AvailableSeats,
		PriceCents: st.PriceCents, Price: formatCents(st.PriceCents),
	}
}

type seatResp struct {
	ID          int64  `json:"id"`
	Row         string `json:"row"`
	Number      int    `json:"number"`
	Label       string `json:"label"`
	IsAvailable bool   `json:"is_available"`
}

func toSeat(s model.Seat) seatResp {
	return seatResp{ID: s.ID, Row: s.Row, Number: s.Number, Label: s.Label(), IsAvailable: s.IsAvailable}
}

func toSeats(list []model.Seat) []seatResp {
	out := make([]seatResp, len(list))
	for i, s := range list {
		out[i] = toSeat(s)
	}
	return out
}

type seatRowResp struct {
	Row   string     `json:"row"`
	Seats []seatResp `json:"seats"`
}

type seatMapResp struct {
	Showtime  showtimeResp  `json:"showtime"`
	Available int           `json:"available"`
	Rows      []seatRowResp `json:"rows"`
}

func toSeatMap(sm *service.SeatMap) seatMapResp {
	out := seatMapResp{Showtime: toShowtime(sm.Showtime), Available: sm.Available, Rows: make([]seatRowResp, len(sm.Rows))}
	for i, r := range sm.Rows {
		out.Rows[i] = seatRowResp{Row: r.Row, Seats: toSeats(r.Seats)}
	}
	return out
}

type bookingResp struct {
	ID            int64      `json:"id"`
	Reference     string     `json:"booking_reference"`
	MovieID       int64      `json:"movie_id"`
	MovieTitle    string     `json:"movie_title,omitempty"`
	PosterURL     string     `json:"poster_url,omitempty"`
	Genre         string     `json:"genre,omitempty"`
	ShowtimeID    int64      `json:"showtime_id"`
	ShowDate      string     `json:"show_date"`
	ShowTime      string     `json:"show_time"`
	ScreenNumber  int        `json:"screen_number"`
	TotalSeats    int        `json:"total_seats"`
	Seats         []seatResp `json:"seats"`
	SeatLabels    []string   `json:"seat_labels"`
	TotalCents    int64      `json:"total_amount_cents"`
	Total         string     `json:"total_amount"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	BookedAt      time.Time  `json:"booking_date"`
}

func labels(list []model.Seat) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Label()
	}
	return out
}

func toBooking(b model.BookingDetail) bookingResp {
	return bookingResp{
		ID: b.ID, Reference: b.Reference, MovieID: b.MovieID, MovieTitle: b.MovieTitle,
		PosterURL: b.PosterURL, Genre: b.Genre, ShowtimeID: b.ShowtimeID,
		ShowDate: b.ShowDate, ShowTime: b.ShowTime, ScreenNumber: b.ScreenNumber,
		TotalSeats: b.TotalSeats, Seats: toSeats(b.Seats), SeatLabels: labels(b.Seats),
		TotalCents: b.TotalAmountCents, Total: formatCents(b.TotalAmountCents),
		Status: b.Status, PaymentStatus: b.PaymentStatus, BookedAt: b.BookingDate,
	}
}

func fromReceipt(r inventory.Receipt) bookingResp {
	return bookingResp{
		ID: r.BookingID, Reference: r.Reference, MovieID: r.MovieID, ShowtimeID: r.ShowtimeID,
		ShowDate: r.ShowDate, ShowTime: r.ShowTime, ScreenNumber: r.ScreenNumber,
		TotalSeats: len(r.Seats), Seats: toSeats(r.Seats), SeatLabels: r.SeatLabels(),
		TotalCents: r.TotalCents, Total: formatCents(r.TotalCents),
		Status: r.Status, PaymentStatus: r.PaymentStatus, TransactionID: r.TransactionID,
		BookedAt: r.BookedAt,
	}
}

type paymentResp struct {
	ID            int64     `json:"id"`
	BookingID     int64     `json:"booking_id"`
	TransactionID string    `json:"transaction_id"`
	AmountCents   int64     `json:"amount_cents"`
	Amount        string    `json:"amount"`
	Method        string    `json:"payment_method"`
	PaidAt        time.Time `json:"payment_date"`
}
