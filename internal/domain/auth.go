package domain

import "time"

// TokenType discriminates the token families. A token of one type must never
// be accepted where another type is required, even with a valid signature.
type TokenType string

const (
	TokenTypeAccess      TokenType = "access"
	TokenTypeRefresh     TokenType = "refresh"
	TokenTypeAlbumAccess TokenType = "album-access"
)

// Session is an issued admin token pair. ExpiresAt refers to the access
// token; the refresh token lives longer and is only used to mint new pairs.
type Session struct {
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
}

// AlbumGrant proves a guest has unlocked a specific album. It carries no
// password material, only the grant.
type AlbumGrant struct {
	AlbumID   string
	AlbumSlug string
}
