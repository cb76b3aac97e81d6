package model

import "time"

// User represents an account row in the `users` table. The password is
// kept only as a bcrypt hash; handlers expose users through their own
// response types.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  FullName     – display name chosen at sign-up.
//  Phone        – optional contact number.
//  Address      – optional postal address.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last profile change.
type User struct {
	ID           int64     // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Phone        string    // users.phone
	Address      string    // users.address
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        int64      // refresh_tokens.id
	UserID    int64      // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

// UserStats summarises a user's booking history for the profile view.
type UserStats struct {
	TotalBookings   int   // number of bookings made
	MoviesWatched   int   // distinct movies across those bookings
	TotalSpentCents int64 // sum of booking totals
}
