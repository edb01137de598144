package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/gallery-service/internal/domain"
)

// AlbumSessionManager issues and validates the single-purpose album-access
// token proving a guest unlocked a password-protected album. The token
// carries only the grant, never password material.
type AlbumSessionManager struct {
	codec      *Codec
	cookies    CookiePolicy
	defaultTTL time.Duration
}

// NewAlbumSessionManager builds a manager for the album-access family.
func NewAlbumSessionManager(codec *Codec, cookies CookiePolicy, defaultTTL time.Duration) *AlbumSessionManager {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &AlbumSessionManager{codec: codec, cookies: cookies, defaultTTL: defaultTTL}
}

// GenerateToken mints an album-access token for the album. A non-positive
// ttl falls back to the configured default.
func (m *AlbumSessionManager) GenerateToken(albumID, albumSlug string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	claims := &Claims{
		TokenType: domain.TokenTypeAlbumAccess,
		AlbumID:   albumID,
		AlbumSlug: albumSlug,
	}
	return m.codec.Sign(claims, ttl)
}

// ValidateToken verifies the token and returns the grant. Beyond signature
// and expiry, the token type must be album-access and both album fields
// must be present: a signed-but-incomplete payload stays untrusted.
func (m *AlbumSessionManager) ValidateToken(token string) (*domain.AlbumGrant, error) {
	claims, err := m.codec.VerifyType(token, domain.TokenTypeAlbumAccess)
	if err != nil {
		return nil, err
	}
	if claims.AlbumID == "" || claims.AlbumSlug == "" {
		return nil, ErrTokenInvalid
	}
	return &domain.AlbumGrant{AlbumID: claims.AlbumID, AlbumSlug: claims.AlbumSlug}, nil
}

// Grant mints a token for the album and persists the album-session cookie.
func (m *AlbumSessionManager) Grant(c *fiber.Ctx, album *domain.Album, ttl time.Duration) (time.Time, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	token, expiresAt, err := m.GenerateToken(album.ID, album.Slug, ttl)
	if err != nil {
		return time.Time{}, err
	}
	m.cookies.Set(c, AlbumSessionCookie, token, ttl)
	return expiresAt, nil
}

// GrantFrom resolves the grant from the album-session cookie, if any.
func (m *AlbumSessionManager) GrantFrom(c *fiber.Ctx) (*domain.AlbumGrant, error) {
	token := c.Cookies(AlbumSessionCookie)
	if token == "" {
		return nil, ErrNoCookie
	}
	return m.ValidateToken(token)
}

// Revoke clears the album-session cookie. Idempotent.
func (m *AlbumSessionManager) Revoke(c *fiber.Ctx) {
	m.cookies.Clear(c, AlbumSessionCookie)
}
