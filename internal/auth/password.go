package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 32
	keyLength  = 64

	// DefaultIterations is the PBKDF2 work factor for newly stored hashes.
	// The count is embedded in each stored hash, so raising it later does
	// not break verification of existing hashes.
	DefaultIterations = 100_000
)

// HashPassword derives a PBKDF2-SHA512 hash with a fresh random salt and
// returns it as saltHex:iterations:keyHex.
func HashPassword(password string, iterations int) (string, error) {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha512.New)
	return hex.EncodeToString(salt) + ":" + strconv.Itoa(iterations) + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword re-derives the key with the salt and iteration count
// embedded in the stored hash and compares in constant time. Malformed or
// empty stored hashes verify false; the caller is responsible for treating
// an empty stored hash as "password not set" before calling.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 3 {
		return false
	}

	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	expected, err := hex.DecodeString(parts[2])
	if err != nil || len(expected) == 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha512.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
