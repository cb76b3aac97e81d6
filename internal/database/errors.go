package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotInitialized is returned by any operation attempted on a nil or
// closed Store.
var ErrNotInitialized = errors.New("storage not initialized")

// ErrInitialization matches every *InitError via errors.Is.
var ErrInitialization = errors.New("storage initialization failed")

// InitError reports which bootstrap step failed. Startup must abort on it.
type InitError struct {
	Step string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Step, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

func (e *InitError) Is(target error) bool { return target == ErrInitialization }

// IsUniqueViolation reports whether err is a unique constraint failure in
// either dialect.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	// modernc.org/sqlite: *sqlite.Error exposes the extended result code
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		switch coded.Code() {
		case 2067, 1555: // SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
