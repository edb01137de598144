package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/gallery-service/internal/domain"
)

func newAlbumManager() *AlbumSessionManager {
	codec := NewCodec(testSecret, AudienceGuest)
	return NewAlbumSessionManager(codec, CookiePolicy{}, 24*time.Hour)
}

func TestAlbumTokenRoundTrip(t *testing.T) {
	manager := newAlbumManager()

	token, expiresAt, err := manager.GenerateToken("album-1", "summer-2026", 0)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 2*time.Second)

	grant, err := manager.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "album-1", grant.AlbumID)
	require.Equal(t, "summer-2026", grant.AlbumSlug)
}

func TestAlbumTokenCustomTTL(t *testing.T) {
	manager := newAlbumManager()

	token, _, err := manager.GenerateToken("album-1", "summer-2026", time.Hour)
	require.NoError(t, err)

	claims, err := manager.codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	require.Equal(t, domain.TokenTypeAlbumAccess, claims.TokenType)
}

func TestAlbumTokenTamperDetection(t *testing.T) {
	manager := newAlbumManager()

	token, _, err := manager.GenerateToken("album-1", "summer-2026", 0)
	require.NoError(t, err)

	mutated := []byte(token)
	if mutated[10] == 'A' {
		mutated[10] = 'B'
	} else {
		mutated[10] = 'A'
	}
	_, err = manager.ValidateToken(string(mutated))
	require.Error(t, err)
}

func TestAlbumTokenRejectsAdminToken(t *testing.T) {
	manager := newAlbumManager()
	adminCodec := NewCodec(testSecret, AudienceAdmin)

	// A valid admin access token must never pass as an album grant even
	// though it is signed with the same secret.
	adminToken := mintAdminToken(t, adminCodec, domain.TokenTypeAccess, time.Hour)

	_, err := manager.ValidateToken(adminToken)
	require.Error(t, err)
}

func TestAlbumTokenRejectsIncompletePayload(t *testing.T) {
	manager := newAlbumManager()

	cases := map[string]struct {
		albumID   string
		albumSlug string
	}{
		"missing id":   {albumID: "", albumSlug: "summer-2026"},
		"missing slug": {albumID: "album-1", albumSlug: ""},
		"missing both": {},
	}

	for name, tc := range cases {
		claims := &Claims{
			TokenType: domain.TokenTypeAlbumAccess,
			AlbumID:   tc.albumID,
			AlbumSlug: tc.albumSlug,
		}
		token, _, err := manager.codec.Sign(claims, time.Hour)
		require.NoError(t, err)

		// Signature is valid, payload is incomplete.
		_, err = manager.ValidateToken(token)
		require.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}

func TestAlbumTokenRejectsWrongSecret(t *testing.T) {
	manager := newAlbumManager()
	other := NewAlbumSessionManager(NewCodec("a-completely-different-32-char-key!!", AudienceGuest), CookiePolicy{}, 24*time.Hour)

	token, _, err := manager.GenerateToken("album-1", "summer-2026", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}
