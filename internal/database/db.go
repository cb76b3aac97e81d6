package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL flavour behind a Store. Both dialects share the
// same DML ('?' placeholders); only the DDL differs.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// TimeLayout is the text layout used for every timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Options selects and addresses the backing database.
type Options struct {
	Driver Dialect
	Path   string // sqlite file path or "file:" URI
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
}

// Store is the explicitly constructed storage handle shared by every
// repository and by the inventory engine. A nil Store, or one that has been
// closed, reports ErrNotInitialized instead of failing later with a nil
// pointer.
type Store struct {
	db      *sql.DB
	dialect Dialect
	closed  atomic.Bool
}

// New wraps an already opened *sql.DB.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// Open connects to the configured database and verifies the connection.
func Open(opts Options) (*Store, error) {
	switch opts.Driver {
	case DialectMySQL:
		return openMySQL(opts)
	case DialectSQLite, "":
		return openSQLite(opts.Path)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opts.Driver)
	}
}

func openMySQL(opts Options) (*Store, error) {
	auth := opts.User
	if opts.Pass != "" {
		auth = fmt.Sprintf("%s:%s", opts.User, opts.Pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&loc=UTC&clientFoundRows=true",
		auth, opts.Host, opts.Port, opts.Name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, DialectMySQL), nil
}

func openSQLite(path string) (*Store, error) {
	if path == "" {
		path = "moviego.db"
	}
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection serialises writers; every statement issued while a
	// transaction is open must go through that transaction
	db.SetMaxOpenConns(1)

	if err := ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db, DialectSQLite), nil
}

func ping(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// DB returns the underlying pool or ErrNotInitialized.
func (s *Store) DB() (*sql.DB, error) {
	if s == nil || s.db == nil || s.closed.Load() {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Dialect reports the SQL flavour of the store.
func (s *Store) Dialect() Dialect {
	if s == nil {
		return ""
	}
	return s.dialect
}

// Close releases the pool. Later calls on the store return ErrNotInitialized.
func (s *Store) Close() error {
	if s == nil || s.db == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// InTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FormatTime renders t in the storage layout (UTC).
func FormatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// ParseTime parses a stored timestamp. Empty or malformed values yield the
// zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
