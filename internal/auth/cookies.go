package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names fixed by the public contract.
const (
	AccessTokenCookie  = "access-token"
	RefreshTokenCookie = "refresh-token"
	AlbumSessionCookie = "album-session"
)

// CookiePolicy applies the session cookie flags: httpOnly always,
// sameSite=lax, path=/, secure only in production.
type CookiePolicy struct {
	Secure bool
}

// Set writes a session cookie whose maxAge matches the token lifetime.
func (p CookiePolicy) Set(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Clear expires a cookie immediately. Clearing an absent cookie is a no-op,
// so session destruction is idempotent.
func (p CookiePolicy) Clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   p.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
