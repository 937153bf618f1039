package domain

import "time"

// User is the domain entity for a user account. PasswordHash is the
// bcrypt hash, never the raw password.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
