package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/gallery-service/internal/domain"
)

// ErrNoCookie reports an absent session cookie. Authorization treats it the
// same as any verification failure; only logging distinguishes it.
var ErrNoCookie = errors.New("no session cookie")

// SessionManager issues and validates the admin access/refresh token pair
// and owns their cookie lifecycle. Tokens are self-verifying, so there is
// no server-side session table and no revocation before natural expiry.
type SessionManager struct {
	codec      *Codec
	cookies    CookiePolicy
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSessionManager builds a manager for the admin token family.
func NewSessionManager(codec *Codec, cookies CookiePolicy, accessTTL, refreshTTL time.Duration) *SessionManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &SessionManager{codec: codec, cookies: cookies, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue mints a fresh access/refresh pair without touching cookies.
func (m *SessionManager) Issue(user *domain.AuthUser) (*domain.Session, error) {
	access, accessExp, err := m.mint(user, domain.TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.mint(user, domain.TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Create mints a pair and persists both cookies on the response.
func (m *SessionManager) Create(c *fiber.Ctx, user *domain.AuthUser) (*domain.Session, error) {
	session, err := m.Issue(user)
	if err != nil {
		return nil, err
	}
	m.cookies.Set(c, AccessTokenCookie, session.AccessToken, m.accessTTL)
	m.cookies.Set(c, RefreshTokenCookie, session.RefreshToken, m.refreshTTL)
	return session, nil
}

// CurrentUser resolves the identity from the access-token cookie. Absent,
// expired, tampered and wrong-type cookies all yield a nil user; the error
// carries the cause for logging only.
func (m *SessionManager) CurrentUser(c *fiber.Ctx) (*domain.AuthUser, error) {
	token := c.Cookies(AccessTokenCookie)
	if token == "" {
		return nil, ErrNoCookie
	}
	claims, err := m.codec.VerifyType(token, domain.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &domain.AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

// Refresh rotates the pair from a valid refresh-token cookie: both a new
// access and a new refresh token are minted and persisted, shrinking the
// replay window of a stolen refresh token.
func (m *SessionManager) Refresh(c *fiber.Ctx) (*domain.Session, *domain.AuthUser, error) {
	user, err := m.refreshIdentity(c)
	if err != nil {
		return nil, nil, err
	}
	session, err := m.Create(c, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// RenewAccess mints only a new access-token cookie from a valid refresh
// cookie. Used by the transparent-renewal middleware; keeping the refresh
// token untouched avoids rotating it on every request. Two concurrent
// renewals are a benign race: both cookies verify, the last write wins.
func (m *SessionManager) RenewAccess(c *fiber.Ctx) (*domain.AuthUser, error) {
	user, err := m.refreshIdentity(c)
	if err != nil {
		return nil, err
	}
	access, _, err := m.mint(user, domain.TokenTypeAccess, m.accessTTL)
	if err != nil {
		return nil, err
	}
	m.cookies.Set(c, AccessTokenCookie, access, m.accessTTL)
	return user, nil
}

// Destroy clears both cookies unconditionally. Idempotent.
func (m *SessionManager) Destroy(c *fiber.Ctx) {
	m.cookies.Clear(c, AccessTokenCookie)
	m.cookies.Clear(c, RefreshTokenCookie)
}

func (m *SessionManager) refreshIdentity(c *fiber.Ctx) (*domain.AuthUser, error) {
	token := c.Cookies(RefreshTokenCookie)
	if token == "" {
		return nil, ErrNoCookie
	}
	claims, err := m.codec.VerifyType(token, domain.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &domain.AuthUser{ID: claims.Subject, Email: claims.Email}, nil
}

func (m *SessionManager) mint(user *domain.AuthUser, tokenType domain.TokenType, ttl time.Duration) (string, time.Time, error) {
	claims := &Claims{
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: user.ID,
		},
	}
	return m.codec.Sign(claims, ttl)
}
