// Package usecase implements registration, email verification, login and password reset.
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/shared/password"
)

// codeBytes is the entropy of a verification or reset code.
const codeBytes = 32

// UserRepository is the credential store as seen by the auth flows.
// Following Go convention, the interface is defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create persists a new user and assigns its ID.
	// Returns domain.ErrUserAlreadyExists when the name or email is taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail returns domain.ErrUserNotFound when no user has the email.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByEmailOrName returns the first user holding either value.
	FindByEmailOrName(ctx context.Context, email, name string) (*entity.User, error)

	// FindByVerificationCode returns the user holding the pending code.
	FindByVerificationCode(ctx context.Context, code string) (*entity.User, error)

	// Update overwrites the stored user.
	Update(ctx context.Context, user *entity.User) error
}

// TokenIssuer signs identity assertions.
type TokenIssuer interface {
	Issue(id, email, role string) (string, error)
}

// Notifier sends account emails. Calls return immediately; delivery failures are the
// notifier's concern and never reach the caller.
type Notifier interface {
	SendVerification(ctx context.Context, to, code string)
	SendPasswordReset(ctx context.Context, to, code string)
}

type authUsecase struct {
	users    UserRepository
	tokens   TokenIssuer
	notifier Notifier
	newCode  func() (string, error)
}

// NewAuthUsecase wires the auth flows.
func NewAuthUsecase(users UserRepository, tokens TokenIssuer, notifier Notifier) *authUsecase {
	return &authUsecase{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		newCode:  GenerateCode,
	}
}

// GenerateCode returns 32 random bytes, hex encoded.
func GenerateCode() (string, error) {
	b := make([]byte, codeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified user and mails the verification link.
func (u *authUsecase) Register(ctx context.Context, name, email, pw string) (*entity.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if err := password.Validate(pw); err != nil {
		return nil, err
	}

	_, err := u.users.FindByEmailOrName(ctx, email, name)
	switch {
	case err == nil:
		return nil, domain.ErrUserAlreadyExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := password.Hash(pw)
	if err != nil {
		return nil, err
	}
	code, err := u.newCode()
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleUser,
	}
	user.SetCode(code)
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.notifier.SendVerification(ctx, user.Email, code)
	return user, nil
}

// VerifyEmail consumes a code and marks its holder verified.
func (u *authUsecase) VerifyEmail(ctx context.Context, code string) error {
	user, err := u.userByCode(ctx, code)
	if err != nil {
		return err
	}

	user.IsVerified = true
	user.ClearCode()
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to verify user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns a signed token.
// bcrypt runs even for unknown emails so response timing does not reveal which accounts exist.
func (u *authUsecase) Login(ctx context.Context, email, pw string) (string, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !password.Matches(hash, pw) || user == nil {
		return "", domain.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", domain.ErrEmailNotVerified
	}

	token, err := u.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ForgotPassword issues a reset code, replacing any pending code, and mails the reset link.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}

	code, err := u.newCode()
	if err != nil {
		return err
	}
	user.SetCode(code)
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	u.notifier.SendPasswordReset(ctx, user.Email, code)
	return nil
}

// ResetPassword consumes a code and sets a new password. The password policy is checked
// before the code is looked up, so a weak password leaves the code pending.
// The code was delivered to the account's address, so the account is also marked verified.
func (u *authUsecase) ResetPassword(ctx context.Context, code, newPassword string) error {
	if err := password.Validate(newPassword); err != nil {
		return err
	}

	user, err := u.userByCode(ctx, code)
	if err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	user.IsVerified = true
	user.ClearCode()
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

func (u *authUsecase) userByCode(ctx context.Context, code string) (*entity.User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, domain.ErrInvalidCode
	}
	user, err := u.users.FindByVerificationCode(ctx, code)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find code holder: %w", err)
	}
	return user, nil
}
