package adapters

import (
	"time"

	"blog_backend/internal/feature/auth/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID               string  `gorm:"primaryKey;size:36"`
	Name             string  `gorm:"uniqueIndex;size:20;not null"`
	Email            string  `gorm:"uniqueIndex;size:255;not null"`
	Password         string  `gorm:"size:255;not null"`
	Role             string  `gorm:"size:16;not null;default:user"`
	IsVerified       bool    `gorm:"not null;default:false"`
	VerificationCode *string `gorm:"index;size:64"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.Password,
		Role:             m.Role,
		IsVerified:       m.IsVerified,
		VerificationCode: m.VerificationCode,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		Password:         u.PasswordHash,
		Role:             u.Role,
		IsVerified:       u.IsVerified,
		VerificationCode: u.VerificationCode,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
