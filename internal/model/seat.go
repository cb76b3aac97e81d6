package model

import "strconv"

// Seat is a physical position in a showtime's seat grid. A seat belongs to
// exactly one showtime; IsAvailable flips from true to false once, when a
// booking claims it.
type Seat struct {
	ID          int64
	ShowtimeID  int64
	Row         string // "A".."H"
	Number      int    // 1-based within the row
	IsAvailable bool
}

// Label renders the seat as shown on a ticket, e.g. "C7".
func (s Seat) Label() string { return s.Row + strconv.Itoa(s.Number) }
