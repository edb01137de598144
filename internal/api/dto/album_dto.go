package dto

import "time"

// UnlockRequest payload for album password submission.
type UnlockRequest struct {
	Password string `json:"password"`
}

// AlbumResponse is the album identity returned after an unlock.
type AlbumResponse struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// AlbumSessionResponse describes the issued grant.
type AlbumSessionResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// AccessResponse reports whether a valid grant for the album is present.
type AccessResponse struct {
	Authorized bool   `json:"authorized"`
	AlbumID    string `json:"album_id,omitempty"`
	AlbumSlug  string `json:"album_slug,omitempty"`
}
