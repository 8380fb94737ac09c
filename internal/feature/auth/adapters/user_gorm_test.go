package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.Migrate(gdb, &UserModel{}), "failed to migrate table")

	return gdb
}

// seedUser creates a test user through the repository.
func seedUser(t *testing.T, repo *userGorm, name, email string) *entity.User {
	t.Helper()

	u := &entity.User{Name: name, Email: email, PasswordHash: "hash", Role: entity.RoleUser}
	u.SetCode("code-" + name)
	require.NoError(t, repo.Create(context.Background(), u), "failed to seed user")
	return u
}

func TestNewUserGorm(t *testing.T) {
	repo := NewUserGorm(setupTestDB(t))

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestUserGorm_Create(t *testing.T) {
	t.Parallel()

	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()

	u := seedUser(t, repo, "alice", "alice@example.com")
	assert.Len(t, u.ID, 36, "uuid should be assigned")
	assert.False(t, u.CreatedAt.IsZero())

	tests := []struct {
		name  string
		user  *entity.User
		dupOK bool
	}{
		{"duplicate email", &entity.User{Name: "other", Email: "alice@example.com", PasswordHash: "h", Role: entity.RoleUser}, false},
		{"duplicate name", &entity.User{Name: "alice", Email: "other@example.com", PasswordHash: "h", Role: entity.RoleUser}, false},
		{"distinct user", &entity.User{Name: "bob", Email: "bob@example.com", PasswordHash: "h", Role: entity.RoleUser}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.dupOK {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
		})
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2, "rejected duplicates must not leave records")
}

func TestUserGorm_Finders(t *testing.T) {
	t.Parallel()

	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	alice := seedUser(t, repo, "alice", "alice@example.com")

	t.Run("by id", func(t *testing.T) {
		got, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("by email", func(t *testing.T) {
		got, err := repo.FindByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
	})

	t.Run("by email or name", func(t *testing.T) {
		got, err := repo.FindByEmailOrName(ctx, "nobody@example.com", "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)

		_, err = repo.FindByEmailOrName(ctx, "nobody@example.com", "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("by verification code", func(t *testing.T) {
		got, err := repo.FindByVerificationCode(ctx, "code-alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, got.ID)
		require.NotNil(t, got.VerificationCode)
		assert.Equal(t, "code-alice", *got.VerificationCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserGorm_Update(t *testing.T) {
	t.Parallel()

	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	alice := seedUser(t, repo, "alice", "alice@example.com")
	seedUser(t, repo, "bob", "bob@example.com")

	t.Run("clears the code and marks verified", func(t *testing.T) {
		alice.IsVerified = true
		alice.ClearCode()
		require.NoError(t, repo.Update(ctx, alice))

		got, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.True(t, got.IsVerified)
		assert.Nil(t, got.VerificationCode)

		_, err = repo.FindByVerificationCode(ctx, "code-alice")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("duplicate name", func(t *testing.T) {
		clash := *alice
		clash.Name = "bob"
		assert.ErrorIs(t, repo.Update(ctx, &clash), domain.ErrUserAlreadyExists)

		got, err := repo.FindByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Name)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost := &entity.User{ID: "missing", Name: "ghost", Email: "ghost@example.com"}
		assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrUserNotFound)
	})
}

func TestUserGorm_DeleteAndList(t *testing.T) {
	t.Parallel()

	repo := NewUserGorm(setupTestDB(t))
	ctx := context.Background()
	alice := seedUser(t, repo, "alice", "alice@example.com")
	bob := seedUser(t, repo, "bob", "bob@example.com")

	require.NoError(t, repo.Delete(ctx, alice.ID))
	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), domain.ErrUserNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)
}
