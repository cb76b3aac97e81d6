package database

import (
	"context"
	"fmt"
)

// Tables lists every table in dependency order.
var Tables = []string{
	"users", "refresh_tokens", "movies", "showtimes", "seats",
	"bookings", "booking_seats", "payments",
}

var sqliteDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name     TEXT NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    INTEGER NOT NULL REFERENCES users(id),
		token_hash TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		genre        TEXT NOT NULL,
		duration_min INTEGER NOT NULL,
		rating       REAL NOT NULL DEFAULT 0,
		synopsis     TEXT NOT NULL DEFAULT '',
		poster_url   TEXT NOT NULL DEFAULT '',
		release_date TEXT NOT NULL DEFAULT '',
		language     TEXT NOT NULL DEFAULT '',
		director     TEXT NOT NULL DEFAULT '',
		cast_members TEXT NOT NULL DEFAULT '',
		is_active    INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		movie_id        INTEGER NOT NULL REFERENCES movies(id),
		show_date       TEXT NOT NULL,
		show_time       TEXT NOT NULL,
		screen_number   INTEGER NOT NULL,
		available_seats INTEGER NOT NULL CHECK (available_seats >= 0),
		price_cents     INTEGER NOT NULL,
		is_active       INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS seats (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		showtime_id  INTEGER NOT NULL REFERENCES showtimes(id),
		seat_row     TEXT NOT NULL,
		seat_number  INTEGER NOT NULL,
		is_available INTEGER NOT NULL DEFAULT 1,
		UNIQUE (showtime_id, seat_row, seat_number)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id            INTEGER NOT NULL REFERENCES users(id),
		movie_id           INTEGER NOT NULL REFERENCES movies(id),
		showtime_id        INTEGER NOT NULL REFERENCES showtimes(id),
		booking_date       TEXT NOT NULL,
		total_seats        INTEGER NOT NULL,
		total_amount_cents INTEGER NOT NULL,
		status             TEXT NOT NULL,
		payment_status     TEXT NOT NULL,
		booking_reference  TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id INTEGER NOT NULL REFERENCES bookings(id),
		seat_id    INTEGER NOT NULL REFERENCES seats(id),
		UNIQUE (booking_id, seat_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		booking_id     INTEGER NOT NULL REFERENCES bookings(id),
		amount_cents   INTEGER NOT NULL,
		payment_method TEXT NOT NULL,
		payment_date   TEXT NOT NULL,
		transaction_id TEXT NOT NULL UNIQUE,
		status         TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_showtimes_movie_date ON showtimes (movie_id, show_date)`,
	`CREATE INDEX IF NOT EXISTS idx_seats_showtime ON seats (showtime_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_booking_seats_booking ON booking_seats (booking_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_booking ON payments (booking_id)`,
}

var mysqlDDL = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		full_name     VARCHAR(255) NOT NULL,
		phone         VARCHAR(32) NOT NULL DEFAULT '',
		address       VARCHAR(512) NOT NULL DEFAULT '',
		created_at    VARCHAR(19) NOT NULL,
		updated_at    VARCHAR(19) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at VARCHAR(19) NOT NULL,
		revoked_at VARCHAR(19) NULL,
		created_at VARCHAR(19) NOT NULL,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(255) NOT NULL,
		genre        VARCHAR(128) NOT NULL,
		duration_min INT NOT NULL,
		rating       DOUBLE NOT NULL DEFAULT 0,
		synopsis     TEXT NOT NULL,
		poster_url   VARCHAR(512) NOT NULL DEFAULT '',
		release_date VARCHAR(10) NOT NULL DEFAULT '',
		language     VARCHAR(64) NOT NULL DEFAULT '',
		director     VARCHAR(255) NOT NULL DEFAULT '',
		cast_members VARCHAR(1024) NOT NULL DEFAULT '',
		is_active    TINYINT(1) NOT NULL DEFAULT 1,
		created_at   VARCHAR(19) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS showtimes (
		id              BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id        BIGINT UNSIGNED NOT NULL,
		show_date       VARCHAR(10) NOT NULL,
		show_time       VARCHAR(5) NOT NULL,
		screen_number   INT NOT NULL,
		available_seats INT NOT NULL,
		price_cents     BIGINT NOT NULL,
		is_active       TINYINT(1) NOT NULL DEFAULT 1,
		KEY idx_showtimes_movie_date (movie_id, show_date),
		CONSTRAINT chk_available_seats CHECK (available_seats >= 0),
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS seats (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		showtime_id  BIGINT UNSIGNED NOT NULL,
		seat_row     VARCHAR(8) NOT NULL,
		seat_number  INT NOT NULL,
		is_available TINYINT(1) NOT NULL DEFAULT 1,
		UNIQUE KEY uq_seat_position (showtime_id, seat_row, seat_number),
		CONSTRAINT fk_seats_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id                 BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id            BIGINT UNSIGNED NOT NULL,
		movie_id           BIGINT UNSIGNED NOT NULL,
		showtime_id        BIGINT UNSIGNED NOT NULL,
		booking_date       VARCHAR(19) NOT NULL,
		total_seats        INT NOT NULL,
		total_amount_cents BIGINT NOT NULL,
		status             VARCHAR(16) NOT NULL,
		payment_status     VARCHAR(16) NOT NULL,
		booking_reference  VARCHAR(32) NOT NULL UNIQUE,
		KEY idx_bookings_user (user_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_bookings_movie FOREIGN KEY (movie_id) REFERENCES movies(id),
		CONSTRAINT fk_bookings_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NOT NULL,
		seat_id    BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_booking_seat (booking_id, seat_id),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings(id),
		CONSTRAINT fk_booking_seats_seat FOREIGN KEY (seat_id) REFERENCES seats(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id     BIGINT UNSIGNED NOT NULL,
		amount_cents   BIGINT NOT NULL,
		payment_method VARCHAR(16) NOT NULL,
		payment_date   VARCHAR(19) NOT NULL,
		transaction_id VARCHAR(32) NOT NULL UNIQUE,
		status         VARCHAR(16) NOT NULL,
		CONSTRAINT fk_payments_booking FOREIGN KEY (booking_id) REFERENCES bookings(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// DDL returns the schema statements for a dialect.
func DDL(d Dialect) ([]string, error) {
	switch d {
	case DialectSQLite:
		return sqliteDDL, nil
	case DialectMySQL:
		return mysqlDDL, nil
	}
	return nil, fmt.Errorf("no schema for dialect %q", d)
}

// Migrate creates every table that does not exist yet. It is idempotent.
func Migrate(ctx context.Context, s *Store) error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	stmts, err := DDL(s.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
