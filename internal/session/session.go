// Package session holds the client-side state consumed by the booking
// flow: who is signed in and what they are about to book. Nothing here is
// persisted; a Draft is handed to the inventory engine only at checkout.
package session

import (
	"errors"

	"github.com/iliyamo/moviego/internal/inventory"
	"github.com/iliyamo/moviego/internal/model"
)

// Identity is the signed-in user as seen by the client.
type Identity struct {
	UserID   int64
	Email    string
	FullName string
}

// SignedIn reports whether the identity refers to a user.
func (i Identity) SignedIn() bool { return i.UserID > 0 }

// ErrIncomplete is returned by Validate when no showtime is selected.
var ErrIncomplete = errors.New("booking draft has no showtime")

// Draft is an in-progress seat selection. It is immutable: every With*
// method returns a modified copy, so a draft can be threaded through the
// flow without shared mutable state.
type Draft struct {
	movieID    int64
	showtimeID int64
	date       string
	priceCents int64
	seatIDs    []int64
}

// NewDraft returns an empty draft.
func NewDraft() Draft { return Draft{} }

// WithMovie selects a movie. Choosing a different movie drops every
// selection made for the previous one.
func (d Draft) WithMovie(movieID int64) Draft {
	if movieID == d.movieID {
		return d
	}
	return Draft{movieID: movieID}
}

// WithDate selects a show date. A different date drops the showtime and
// seats chosen for the previous date.
func (d Draft) WithDate(date string) Draft {
	if date == d.date {
		return d
	}
	return Draft{movieID: d.movieID, date: date}
}

// WithShowtime selects a showtime and its per-seat price. Seats chosen for
// another showtime are dropped.
func (d Draft) WithShowtime(st model.Showtime) Draft {
	out := d
	if st.ID != d.showtimeID {
		out.seatIDs = nil
	}
	out.showtimeID = st.ID
	out.priceCents = st.PriceCents
	out.date = st.ShowDate
	if out.movieID == 0 {
		out.movieID = st.MovieID
	}
	return out
}

// WithSeats replaces the seat selection.
func (d Draft) WithSeats(ids ...int64) Draft {
	out := d
	out.seatIDs = append([]int64(nil), ids...)
	return out
}

// Toggle adds the seat when it is not selected and removes it otherwise.
func (d Draft) Toggle(id int64) Draft {
	out := d
	out.seatIDs = make([]int64, 0, len(d.seatIDs)+1)
	found := false
	for _, s := range d.seatIDs {
		if s == id {
			found = true
			continue
		}
		out.seatIDs = append(out.seatIDs, s)
	}
	if !found {
		out.seatIDs = append(out.seatIDs, id)
	}
	return out
}

func (d Draft) MovieID() int64    { return d.movieID }
func (d Draft) ShowtimeID() int64 { return d.showtimeID }
func (d Draft) Date() string      { return d.date }
func (d Draft) PriceCents() int64 { return d.priceCents }

// SeatIDs returns a copy of the selected seat ids.
func (d Draft) SeatIDs() []int64 { return append([]int64(nil), d.seatIDs...) }

// Total is the price of the selection in cents.
func (d Draft) Total() int64 { return d.priceCents * int64(len(d.seatIDs)) }

// Validate applies the selection rules the engine enforces again at commit
// time: a showtime, at least one seat, at most max distinct seats.
func (d Draft) Validate(max int) error {
	if d.showtimeID <= 0 {
		return ErrIncomplete
	}
	if len(d.seatIDs) == 0 {
		return inventory.ErrNoSeats
	}
	seen := make(map[int64]struct{}, len(d.seatIDs))
	for _, id := range d.seatIDs {
		if _, dup := seen[id]; dup {
			return inventory.ErrDuplicateSeat
		}
		seen[id] = struct{}{}
	}
	if max > 0 && len(d.seatIDs) > max {
		return inventory.ErrTooManySeats
	}
	return nil
}

// Request converts the draft into the engine's commit input.
func (d Draft) Request(userID int64) inventory.CommitRequest {
	return inventory.CommitRequest{
		UserID:     userID,
		ShowtimeID: d.showtimeID,
		MovieID:    d.movieID,
		SeatIDs:    d.SeatIDs(),
	}
}

// Cleared returns the empty draft the caller keeps after a successful
// checkout.
func (d Draft) Cleared() Draft { return Draft{} }
