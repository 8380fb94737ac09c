// Package di provides factories that assemble the application's components from configuration.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	authadapters "blog_backend/internal/feature/auth/adapters"
	authusecase "blog_backend/internal/feature/auth/usecase"
	blogadapters "blog_backend/internal/feature/blog/adapters"
	blogusecase "blog_backend/internal/feature/blog/usecase"
	usersusecase "blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/db"
	"blog_backend/internal/platform/http/handler"
	mongoclient "blog_backend/internal/platform/mongo"
)

// UserStore is the credential store used by both the auth and the account operations.
type UserStore interface {
	authusecase.UserRepository
	usersusecase.UserRepository
}

// Stores bundles the repositories of the selected STORE_DRIVER.
type Stores struct {
	Users UserStore
	Posts blogusecase.PostRepository

	// Check pings the backing database for /readyz.
	Check handler.Check

	close func(ctx context.Context) error
}

// Close releases the database connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// NewStores opens the database chosen by cfg.StoreDriver and builds its repositories.
func NewStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gdb, err := db.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, err
		}
		return NewGormStores(gdb, "postgres", cfg.RunMigrations)
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("using sqlite", "path", cfg.SQLitePath)
		return NewGormStores(gdb, "sqlite", cfg.RunMigrations)
	case config.DriverMongo:
		return newMongoStores(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// NewGormStores builds the gorm repositories on an open connection, migrating the schema when asked.
func NewGormStores(gdb *gorm.DB, name string, migrate bool) (*Stores, error) {
	if migrate {
		models := append([]any{&authadapters.UserModel{}}, blogadapters.Models()...)
		if err := db.Migrate(gdb, models...); err != nil {
			return nil, err
		}
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return &Stores{
		Users: authadapters.NewUserGorm(gdb),
		Posts: blogadapters.NewPostGorm(gdb),
		Check: handler.Check{Name: name, Ping: sqlDB.PingContext},
		close: func(context.Context) error { return sqlDB.Close() },
	}, nil
}

func newMongoStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	client, mdb, err := mongoclient.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	users := authadapters.NewUserMongo(mdb)
	posts := blogadapters.NewPostMongo(mdb)
	if err := errors.Join(users.EnsureIndexes(ctx), posts.EnsureIndexes(ctx)); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Stores{
		Users: users,
		Posts: posts,
		Check: handler.Check{Name: "mongo", Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) }},
		close: client.Disconnect,
	}, nil
}
