package domain

import "time"

// User is the domain model for marketplace accounts. UKey is the opaque
// user-facing identifier; the numeric ID never leaves the persistence layer.
type User struct {
	ID           int64
	UKey         string
	FirstName    *string
	LastName     *string
	Username     *string
	Email        string
	PasswordHash *string
	MFAEnabled   bool
	Role         Role
	Temporary    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
