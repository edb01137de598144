package domain

import "time"

// AdminUser is the domain model for gallery administrators.
// An empty PasswordHash means the account exists but no password has been
// set yet (first-login setup state), which is distinct from a wrong password.
type AdminUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthUser is the identity attached to an authenticated request. The email
// is denormalized for display and logging only, never an authorization input.
type AuthUser struct {
	ID    string
	Email string
}
