package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrIssuerKeyMismatch is returned when a presented issuer key does not match.
var ErrIssuerKeyMismatch = errors.New("issuer key mismatch")

// HashIssuerKey hashes a plaintext issuer key with the given bcrypt cost.
func HashIssuerKey(key string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareIssuerKey verifies a plaintext key against its bcrypt hash.
func CompareIssuerKey(hashed, plain string) error {
	if hashed == "" || plain == "" {
		return ErrIssuerKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return ErrIssuerKeyMismatch
	}
	return nil
}
