package inventory

import (
	"errors"
	"fmt"

	"github.com/iliyamo/moviego/internal/database"
	"github.com/iliyamo/moviego/internal/repository"
)

// ErrValidation is wrapped by every error caused by a malformed request.
var ErrValidation = errors.New("invalid request")

var (
	ErrNoSeats         = fmt.Errorf("%w: select at least one seat", ErrValidation)
	ErrTooManySeats    = fmt.Errorf("%w: too many seats selected", ErrValidation)
	ErrDuplicateSeat   = fmt.Errorf("%w: seat selected twice", ErrValidation)
	ErrInvalidSeat     = fmt.Errorf("%w: seat id must be positive", ErrValidation)
	ErrForeignSeat     = fmt.Errorf("%w: seat does not belong to showtime", ErrValidation)
	ErrMovieMismatch   = fmt.Errorf("%w: showtime is for a different movie", ErrValidation)
	ErrMissingUser     = fmt.Errorf("%w: user required", ErrValidation)
	ErrMissingShowtime = fmt.Errorf("%w: showtime required", ErrValidation)
	ErrInvalidMethod   = fmt.Errorf("%w: unsupported payment method", ErrValidation)
	ErrInvalidAmount   = fmt.Errorf("%w: amount must be positive", ErrValidation)
	ErrAmountMismatch  = fmt.Errorf("%w: amount does not match booking total", ErrValidation)
)

var (
	ErrSeatUnavailable   = fmt.Errorf("seat no longer available: %w", repository.ErrConflict)
	ErrSoldOut           = fmt.Errorf("showtime sold out: %w", repository.ErrConflict)
	ErrInsufficientSeats = fmt.Errorf("not enough seats left: %w", repository.ErrConflict)
	ErrAlreadyPaid       = fmt.Errorf("booking already paid: %w", repository.ErrConflict)

	ErrShowtimeNotFound = repository.ErrShowtimeNotFound
	ErrBookingNotFound  = repository.ErrBookingNotFound
)

// SeatUnavailableError lists the requested seats that were already taken.
type SeatUnavailableError struct {
	SeatIDs []int64
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats %v no longer available", e.SeatIDs)
}

func (e *SeatUnavailableError) Unwrap() error { return ErrSeatUnavailable }

// Commit and payment steps reported by StepError.
const (
	StepLoadShowtime  = "load showtime"
	StepLoadSeats     = "load seats"
	StepReference     = "generate reference"
	StepInsertBooking = "insert booking"
	StepLinkSeats     = "link seats"
	StepClaimSeats    = "claim seats"
	StepDecrement     = "decrement counter"
	StepLoadBooking   = "load booking"
	StepTransactionID = "generate transaction id"
	StepMarkPaid      = "mark booking paid"
	StepInsertPayment = "insert payment"
	StepTransaction   = "transaction"
)

// StepError records which step of a commit or payment failed. The whole
// transaction has been rolled back when it is returned.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }

func stepErr(step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Err: err}
}

// Kind classifies errors for callers deciding how to react.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindValidation
	KindConflict
	KindStorage
	KindNotInitialized
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotInitialized:
		return "not_initialized"
	}
	return "storage"
}

// KindOf maps err onto the error taxonomy. Anything unrecognised is a
// storage fault.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, database.ErrNotInitialized):
		return KindNotInitialized
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, repository.ErrConflict):
		return KindConflict
	}
	return KindStorage
}

// IsRetryable reports whether repeating the same request may succeed:
// token collisions are, seat conflicts are not.
func IsRetryable(err error) bool {
	return errors.Is(err, repository.ErrDuplicateReference) ||
		errors.Is(err, repository.ErrDuplicateTransaction)
}

// UnavailableSeats extracts the seat ids carried by a SeatUnavailableError.
func UnavailableSeats(err error) []int64 {
	var su *SeatUnavailableError
	if errors.As(err, &su) {
		return su.SeatIDs
	}
	return nil
}
