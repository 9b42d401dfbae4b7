// Package auth implements password hashing and session token issuance.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const sessionTokenBytes = 16

// HashPassword returns the hex-encoded SHA-256 digest of the plaintext.
// The scheme is deliberately unsalted and deterministic: identical
// passwords produce identical digests. A stored digest is never compared
// against plaintext directly; use VerifyPassword.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether the plaintext hashes to the stored digest.
// The comparison is constant-time so wrong-password and unknown-username
// failures stay indistinguishable to the caller.
func VerifyPassword(hashed, password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(candidate)) == 1
}

// NewSessionToken generates an opaque session token: 16 bytes from the
// system CSPRNG, hex-encoded. Tokens carry no structure, never expire and
// are revoked only by being overwritten on the next login.
func NewSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
