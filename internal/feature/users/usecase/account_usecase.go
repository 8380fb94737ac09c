// Package usecase implements self-service and administrative account operations.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/shared/password"
)

// UserRepository is the credential store as seen by account operations.
type UserRepository interface {
	// FindByID returns domain.ErrUserNotFound when id is unknown.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// Update overwrites the stored user. Returns domain.ErrUserAlreadyExists
	// when the new name or email is taken.
	Update(ctx context.Context, user *entity.User) error

	// Delete returns domain.ErrUserNotFound when id is unknown.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context) ([]*entity.User, error)
}

// ProfilePatch carries a partial profile update. A nil field is left unchanged.
type ProfilePatch struct {
	Name  *string
	Email *string
}

type accountUsecase struct {
	users UserRepository
}

// NewAccountUsecase creates the account operations.
func NewAccountUsecase(users UserRepository) *accountUsecase {
	return &accountUsecase{users: users}
}

// GetSelf returns the caller's own record.
func (u *accountUsecase) GetSelf(ctx context.Context, id string) (*entity.User, error) {
	return u.users.FindByID(ctx, id)
}

// UpdateSelf applies patch to the caller's record. Uniqueness is enforced by the store.
func (u *accountUsecase) UpdateSelf(ctx context.Context, id string, patch ProfilePatch) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if err := u.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (u *accountUsecase) ChangePassword(ctx context.Context, id, current, newPassword string) error {
	user, err := u.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !password.Matches(user.PasswordHash, current) {
		return domain.ErrIncorrectPassword
	}
	if err := password.Validate(newPassword); err != nil {
		return err
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := u.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteSelf removes the caller's account. Deleting an account that is already gone succeeds.
func (u *accountUsecase) DeleteSelf(ctx context.Context, id string) error {
	if err := u.users.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return nil
}

// ListAll returns every account.
func (u *accountUsecase) ListAll(ctx context.Context) ([]*entity.User, error) {
	return u.users.List(ctx)
}

// DeleteByID removes any account. Unknown ids yield domain.ErrUserNotFound.
func (u *accountUsecase) DeleteByID(ctx context.Context, id string) error {
	return u.users.Delete(ctx, id)
}
