// Package repository is the data access layer. Every repository is bound to
// an explicitly constructed *database.Store; the sentinel errors below let
// higher layers tell failure scenarios apart without inspecting driver
// errors.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/moviego/internal/database"
)

// ErrNotFound is returned when a required row does not exist. Handlers
// translate it into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write collides with existing state, such
// as a unique key or a seat that has already been claimed. Handlers
// translate it into a 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotInitialized is returned by repositories built on a nil or closed
// store.
var ErrNotInitialized = database.ErrNotInitialized

var (
	ErrEmailExists          = fmt.Errorf("email already exists: %w", ErrConflict)
	ErrDuplicateReference   = fmt.Errorf("booking reference already exists: %w", ErrConflict)
	ErrDuplicateTransaction = fmt.Errorf("transaction id already exists: %w", ErrConflict)
	ErrShowtimeNotFound     = fmt.Errorf("showtime %w", ErrNotFound)
	ErrBookingNotFound      = fmt.Errorf("booking %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
)

// likePattern lower-cases term and escapes LIKE wildcards with '!' so user
// input always matches literally. Queries pair it with ESCAPE '!'.
func likePattern(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(term) + "%"
}

// inClause returns "?,?,?" for n values together with the int64 ids as
// query arguments.
func inClause(ids []int64) (string, []interface{}) {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}
