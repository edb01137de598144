package domain

import "time"

// Album is the domain model for a shared photo album. Only the fields the
// session layer needs are modeled here; photo contents live elsewhere.
type Album struct {
	ID           string
	Slug         string
	Title        string
	PasswordHash string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Protected reports whether guests must supply a password before viewing.
func (a *Album) Protected() bool {
	return a.PasswordHash != ""
}

// LinkExpired reports whether the share link has passed its expiry.
func (a *Album) LinkExpired(now time.Time) bool {
	return a.ExpiresAt != nil && !now.Before(*a.ExpiresAt)
}
