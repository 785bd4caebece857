package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Single-use tokens for email verification and password reset. Only the
// sha256 digest of the plaintext is ever persisted; the plaintext exists for
// the lifetime of the email that carries it.

// NewToken returns a fresh random token and its storable digest.
func NewToken() (plaintext, hash string, err error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("read token: %w", err)
	}
	plaintext = base64.RawURLEncoding.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

// HashToken recomputes the digest for an incoming plaintext token. Hash
// matching and expiry are both enforced by the store's conditional update
// when a token is consumed.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
