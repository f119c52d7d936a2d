package domain

import "time"

// User represents a registered account. Email is the login key and is
// unique across the system.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
