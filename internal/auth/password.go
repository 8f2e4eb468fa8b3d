package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the default cost for bcrypt hashing.
	DefaultBcryptCost = 12

	// bcrypt ignores input past this length
	maxPasswordBytes = 72
)

// PasswordHasher provides password hashing and verification functionality.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the given cost.
// Costs outside bcrypt's accepted range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash generates a bcrypt hash of the given password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify checks if the provided password matches the stored value.
// Stored values that are not bcrypt hashes are legacy plaintext records.
func (h *PasswordHasher) Verify(password, stored string) bool {
	if !isBcryptHash(stored) {
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	return err == nil
}

func isBcryptHash(s string) bool {
	if !strings.HasPrefix(s, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
