// Package account is the auxiliary user store behind the /api endpoints. The
// relay core never touches it; it only sees opaque participant ids.
package account

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Stored hashes embed the salt, so these can only change
// together with a migration of existing records.
const (
	hashIterations = 100000
	saltLength     = 16
	keyLength      = 64
)

// HashPassword derives a PBKDF2-SHA512 hash from a plain text password and
// returns it in the stored form "saltHex:hashHex".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := pbkdf2.Key([]byte(password), salt, hashIterations, keyLength, sha512.New)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(hash), nil
}

// VerifyPassword compares a plain text password against a stored
// "saltHex:hashHex" form using a constant time comparison.
func VerifyPassword(stored, password string) (bool, error) {
	saltHex, hashHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false, errors.New("invalid stored hash format")
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, err
	}
	expected, err := hex.DecodeString(hashHex)
	if err != nil {
		return false, err
	}

	derived := pbkdf2.Key([]byte(password), salt, hashIterations, len(expected), sha512.New)
	return subtle.ConstantTimeCompare(derived, expected) == 1, nil
}
