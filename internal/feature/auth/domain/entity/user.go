// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account.
type User struct {
	ID string

	// Name and Email are each unique across all users.
	Name  string
	Email string

	// PasswordHash is a bcrypt hash; plaintext is never stored.
	PasswordHash string

	Role       string
	IsVerified bool

	// VerificationCode is the single pending code, shared by email verification and
	// password reset. Issuing one overwrites the other. Nil when nothing is pending.
	VerificationCode *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SetCode stores a pending code, replacing any previous one.
func (u *User) SetCode(code string) {
	u.VerificationCode = &code
}

// ClearCode consumes the pending code.
func (u *User) ClearCode() {
	u.VerificationCode = nil
}
