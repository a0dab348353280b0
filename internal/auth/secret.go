package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidSecret = errors.New("invalid openid or device secret")
	ErrWeakSecret    = errors.New("device secret must be at least 16 characters")
)

// Device secrets are opaque random strings minted by the client on install
// and presented alongside the OpenID at every login. First contact registers
// the secret; later logins must match it. This keeps the login path free of
// passwords while still binding a session to the device that created the
// profile.

const minSecretLength = 16

// ValidateSecret checks that the secret is long enough to be worth hashing.
func ValidateSecret(secret string) error {
	if len(secret) < minSecretLength {
		return ErrWeakSecret
	}
	return nil
}

// HashSecret returns the bcrypt hash of a device secret.
func HashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash device secret: %w", err)
	}
	return string(hash), nil
}

// VerifySecret compares a presented secret against the stored hash.
func VerifySecret(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		return ErrInvalidSecret
	}
	return nil
}
