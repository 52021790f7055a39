// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength is the longest password bcrypt takes into account.
const MaxLength = 72

var ErrPasswordTooLong = errors.New("password is longer than 72 bytes")

// Hash returns a salted bcrypt hash of password.
func Hash(password string) ([]byte, error) {
	const op = "password.Hash"

	if len(password) > MaxLength {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hash, nil
}

// Verify reports whether password matches hash. A malformed hash never matches.
func Verify(password string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
