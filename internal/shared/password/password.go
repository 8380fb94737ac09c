// Package password holds the password policy and bcrypt helpers shared by the auth and users features.
package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the minimum number of characters in a password.
const MinLength = 8

// MaxBytes is the longest password bcrypt accepts.
const MaxBytes = 72

// ErrWeakPassword is wrapped by Validate when the policy is not met.
var ErrWeakPassword = errors.New("password does not meet the strength policy")

// dummyHash is compared against when no stored hash exists so that lookups for unknown
// accounts cost the same as real ones.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Validate requires MinLength characters, at most MaxBytes bytes, and at least one lowercase
// letter, one uppercase letter, one digit and one symbol.
func Validate(pw string) error {
	if len([]rune(pw)) < MinLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, MinLength)
	}
	if len(pw) > MaxBytes {
		return fmt.Errorf("%w: must be at most %d bytes long", ErrWeakPassword, MaxBytes)
	}

	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	switch {
	case !lower:
		return fmt.Errorf("%w: must contain a lowercase letter", ErrWeakPassword)
	case !upper:
		return fmt.Errorf("%w: must contain an uppercase letter", ErrWeakPassword)
	case !digit:
		return fmt.Errorf("%w: must contain a digit", ErrWeakPassword)
	case !symbol:
		return fmt.Errorf("%w: must contain a symbol", ErrWeakPassword)
	}
	return nil
}

// Hash returns the bcrypt hash of pw.
func Hash(pw string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Matches reports whether pw matches hash. An empty hash is compared against a dummy
// value and never matches.
func Matches(hash, pw string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(pw))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
