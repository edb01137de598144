package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/gallery-service/internal/domain"
)

// Fixed identity claims bound into every token. Verification rejects any
// token whose issuer or audience differs.
const (
	Issuer        = "photo-gallery"
	AudienceAdmin = "gallery-admin"
	AudienceGuest = "gallery-guest"
)

// Verification failures are discriminated for observability; callers must
// collapse all of them to "no valid session" when deciding authorization.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenWrongType = errors.New("unexpected token type")
)

// Claims describes the JWT payload shared by both token families. Admin
// tokens carry Email; album tokens carry AlbumID and AlbumSlug.
type Claims struct {
	Email     string           `json:"email,omitempty"`
	TokenType domain.TokenType `json:"token_type"`
	AlbumID   string           `json:"album_id,omitempty"`
	AlbumSlug string           `json:"album_slug,omitempty"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens for one family, identified by audience.
type Codec struct {
	secret   []byte
	audience string
}

// NewCodec builds a codec bound to a signing secret and audience.
func NewCodec(secret, audience string) *Codec {
	return &Codec{secret: []byte(secret), audience: audience}
}

// Sign serializes the claims with the codec's issuer/audience and the given
// lifetime, and signs with HMAC-SHA256. Subject, Email and the family
// payload come from the caller; temporal claims are always set here.
func (c *Codec) Sign(claims *Claims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims.Issuer = Issuer
	claims.RegisteredClaims.Audience = jwt.ClaimStrings{c.audience}
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(expiresAt)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify checks signature, issuer, audience and expiry, and returns the
// claims or one of the discriminated failures. The signature comparison is
// constant-time inside the JWT library.
func (c *Codec) Verify(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, ErrTokenInvalid
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(c.audience),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyType verifies the token and additionally requires the expected
// token type. Type confusion must never grant access, even with a valid
// signature and expiry.
func (c *Codec) VerifyType(tokenStr string, expected domain.TokenType) (*Claims, error) {
	claims, err := c.Verify(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != expected {
		return nil, ErrTokenWrongType
	}
	return claims, nil
}
