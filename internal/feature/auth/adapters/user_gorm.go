// Package adapters provides the credential store implementations.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	authusecase "blog_backend/internal/feature/auth/usecase"
	usersusecase "blog_backend/internal/feature/users/usecase"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// userGorm implements the user repositories on top of GORM (PostgreSQL or SQLite).
type userGorm struct {
	db *gorm.DB
}

var (
	_ authusecase.UserRepository  = (*userGorm)(nil)
	_ usersusecase.UserRepository = (*userGorm)(nil)
)

// NewUserGorm creates a GORM-backed user repository.
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// Create inserts u, assigning a UUID when u.ID is empty.
func (r *userGorm) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	m := UserModelFromEntity(u)
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	*u = *m.ToEntity()
	return nil
}

// FindByID returns domain.ErrUserNotFound when id is unknown.
func (r *userGorm) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByEmail returns domain.ErrUserNotFound when email is unknown.
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "email = ?", email)
}

// FindByEmailOrName returns the first user holding either value.
func (r *userGorm) FindByEmailOrName(ctx context.Context, email, name string) (*entity.User, error) {
	return r.first(ctx, "email = ? OR name = ?", email, name)
}

// FindByVerificationCode returns the user holding code.
func (r *userGorm) FindByVerificationCode(ctx context.Context, code string) (*entity.User, error) {
	return r.first(ctx, "verification_code = ?", code)
}

// Update writes every mutable column of u.
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	m := UserModelFromEntity(u)
	m.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&UserModel{ID: u.ID}).
		Select("name", "email", "password", "role", "is_verified", "verification_code", "updated_at").
		Updates(m)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = m.UpdatedAt
	return nil
}

// Delete removes the user with id.
func (r *userGorm) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns every user, oldest first.
func (r *userGorm) List(ctx context.Context) ([]*entity.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]*entity.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].ToEntity())
	}
	return users, nil
}

func (r *userGorm) first(ctx context.Context, query string, args ...any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return m.ToEntity(), nil
}

// isDuplicateKey recognises unique violations from every supported SQL driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
