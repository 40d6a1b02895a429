// Package auth verifies the admin credential and tracks sessions.
package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost balances hashing cost against sign-in latency.
const bcryptCost = 12

// MinPasswordLength is the minimum accepted admin password length.
const MinPasswordLength = 8

// Verifier checks a username/password pair against the configured admin
// username and a stored bcrypt hash.
type Verifier struct {
	username    string
	placeholder []byte
}

// NewVerifier builds a verifier for the configured admin username. A
// placeholder hash is prepared so the unknown-username path still pays for a
// full bcrypt comparison and cannot be told apart by timing.
func NewVerifier(username string) (*Verifier, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is required")
	}
	placeholder, err := bcrypt.GenerateFromPassword([]byte("placeholder-never-matches"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare placeholder hash: %w", err)
	}
	return &Verifier{username: username, placeholder: placeholder}, nil
}

// Verify reports whether the pair matches the admin username and the stored
// hash. Both factors are always evaluated; the caller gets a single boolean
// with no detail about which factor failed.
func (v *Verifier) Verify(username, password, storedHash string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1

	hash := []byte(storedHash)
	if !usernameMatch {
		hash = v.placeholder
	}
	passwordMatch := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil

	return usernameMatch && passwordMatch
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(storedHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// IsHashed reports whether the stored credential already looks like a bcrypt
// hash. A first-run document may carry the plaintext default instead.
func IsHashed(stored string) bool {
	return len(stored) > 3 && stored[0] == '$' && stored[1] == '2'
}
