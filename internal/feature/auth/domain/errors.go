// Package domain defines domain-level errors for the auth feature.
package domain

import "errors"

var (
	// ErrUserAlreadyExists indicates that the name or email is already taken.
	ErrUserAlreadyExists = errors.New("user with this name or email already exists")

	// ErrUserNotFound indicates that no user matched the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned by login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailNotVerified is returned by login while the account is unverified.
	ErrEmailNotVerified = errors.New("email address has not been verified")

	// ErrInvalidCode indicates that no user holds the verification or reset code.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrIncorrectPassword is returned when the current password does not match.
	ErrIncorrectPassword = errors.New("current password is incorrect")
)
