package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAdminBootstrapped EventType = "admin_bootstrapped"
	EventAdminLoggedIn     EventType = "admin_logged_in"
	EventAdminLoginFailed  EventType = "admin_login_failed"
	EventSessionRefreshed  EventType = "session_refreshed"
	EventSessionDestroyed  EventType = "session_destroyed"
	EventPasswordChanged   EventType = "password_changed"
	EventPasswordReset     EventType = "password_reset"
	EventAlbumUnlocked     EventType = "album_unlocked"
	EventAlbumUnlockFailed EventType = "album_unlock_failed"
)

// Event represents an auth audit event emitted by services. Payloads carry
// identifiers only; passwords, hashes and token strings never appear here.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AdminEventPayload identifies the administrator an event concerns.
type AdminEventPayload struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

// LoginFailedPayload records a denied login. Cause is observability-only;
// the client always receives the same uniform response.
type LoginFailedPayload struct {
	Email string `json:"email"`
	Cause string `json:"cause"`
}

// AlbumEventPayload identifies the album an event concerns.
type AlbumEventPayload struct {
	AlbumID   string `json:"album_id,omitempty"`
	AlbumSlug string `json:"album_slug"`
	Cause     string `json:"cause,omitempty"`
}
