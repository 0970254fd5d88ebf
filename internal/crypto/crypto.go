// Package crypto implements password hashing with legacy plaintext
// migration support, plus opaque token generation and hashing.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the entropy of refresh and reset tokens.
const tokenBytes = 48

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsHashed reports whether a stored credential is a bcrypt hash. Anything
// without the bcrypt prefix is treated as legacy plaintext.
func IsHashed(credential string) bool {
	return strings.HasPrefix(credential, "$2a$") ||
		strings.HasPrefix(credential, "$2b$") ||
		strings.HasPrefix(credential, "$2y$")
}

// VerifyPassword checks a plaintext password against a stored credential.
// Hashed credentials use bcrypt; legacy plaintext credentials use a
// constant-time compare. Malformed credentials simply fail the check.
func VerifyPassword(password, credential string) bool {
	if IsHashed(credential) {
		return bcrypt.CompareHashAndPassword([]byte(credential), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(credential)) == 1
}

// NewToken returns a URL-safe opaque token with tokenBytes of entropy.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken returns the hex SHA-256 digest used to store and look up
// refresh tokens. The digest is not reversible to the plaintext token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
