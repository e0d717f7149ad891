// Package cryptox wraps the one-way password hashing used for user records.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPasswordWithCost returns the bcrypt hash of password at cost, normally
// common.BcryptCost. Tests use bcrypt.MinCost to stay fast.
//
// bcrypt rejects inputs longer than 72 bytes with bcrypt.ErrPasswordTooLong.
func HashPasswordWithCost(password []byte, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(password, cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// reported as a mismatch together with the underlying error.
func CheckPassword(hash string, password []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), password)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
