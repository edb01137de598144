package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Low iteration count keeps the suite fast; the count is embedded in the
// stored hash so verification stays self-describing.
const testIterations = 1000

func TestHashAndVerifyPassword(t *testing.T) {
	for _, password := range []string{"a", "correct horse battery staple", "пароль", "p@ss\x00word"} {
		hash, err := HashPassword(password, testIterations)
		require.NoError(t, err)

		require.True(t, VerifyPassword(password, hash))
		require.False(t, VerifyPassword(password+"x", hash))
	}
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	first, err := HashPassword("secret", testIterations)
	require.NoError(t, err)
	second, err := HashPassword("secret", testIterations)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, VerifyPassword("secret", first))
	require.True(t, VerifyPassword("secret", second))
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("secret", testIterations)
	require.NoError(t, err)

	parts := strings.Split(hash, ":")
	require.Len(t, parts, 3)
	require.Len(t, parts[0], saltLength*2)
	require.Equal(t, "1000", parts[1])
	require.Len(t, parts[2], keyLength*2)
}

func TestVerifyPasswordEmbeddedIterations(t *testing.T) {
	// A hash stored with an older, lower work factor must keep verifying
	// after the configured default changes.
	hash, err := HashPassword("secret", 500)
	require.NoError(t, err)
	require.True(t, VerifyPassword("secret", hash))
}

func TestVerifyPasswordMalformedStoredHash(t *testing.T) {
	for _, stored := range []string{
		"",
		"no-colons",
		"onlyone:colon",
		"zz:1000:abcd",
		"abcd:zero:abcd",
		"abcd:-5:abcd",
		"abcd:1000:zz",
		"::",
	} {
		require.False(t, VerifyPassword("secret", stored), "stored %q", stored)
	}
}
