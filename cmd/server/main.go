package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"

	"blog_backend/internal/app/di"
	"blog_backend/internal/app/router"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	authusecase "blog_backend/internal/feature/auth/usecase"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	blogusecase "blog_backend/internal/feature/blog/usecase"
	usershandler "blog_backend/internal/feature/users/transport/handler"
	usersusecase "blog_backend/internal/feature/users/usecase"
	"blog_backend/internal/platform/config"
	"blog_backend/internal/platform/http/handler"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/logger"
	"blog_backend/internal/platform/mailer"
	infraredis "blog_backend/internal/platform/redis"
	"blog_backend/internal/platform/sanitize"
	"blog_backend/internal/platform/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Initialize(cfg.LogLevel, cfg.JSONLogs())
	gin.SetMode(cfg.GinMode)
	if err := validation.Register(); err != nil {
		slog.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := di.NewStores(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	checks := []handler.Check{stores.Check}

	// Redis
	var rdb *redisv9.Client
	if addr := cfg.RedisAddr(); addr != "" {
		if tmp, err := infraredis.NewRedisClient(ctx, addr, cfg.RedisPassword); err != nil {
			slog.Warn("Redis unavailable, rate limiting per instance", "error", err)
		} else {
			rdb = tmp
			checks = append(checks, handler.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})
		}
	}

	// Mail
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.Mail.Host != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:       cfg.Mail.Host,
			Port:       cfg.Mail.Port,
			Username:   cfg.Mail.Username,
			Password:   cfg.Mail.Password,
			SenderName: cfg.Mail.CompanyName,
			Timeout:    cfg.Mail.Timeout,
		})
	} else {
		slog.Warn("SMTP_HOST is not set, emails are only logged")
	}
	notifier := mailer.NewNotifier(sender, mailer.NotifierConfig{
		Company:     cfg.Mail.CompanyName,
		APIBaseURL:  cfg.PublicBaseURL(),
		FrontendURL: cfg.FrontendURL,
		Timeout:     cfg.Mail.Timeout,
	})
	tokens := jwtmw.NewService(jwtmw.Config{Secret: cfg.JWTSecret, Expiration: cfg.JWTExpiresIn})

	// Usecase
	authUC := authusecase.NewAuthUsecase(stores.Users, tokens, notifier)
	accountUC := usersusecase.NewAccountUsecase(stores.Users)
	blogUC := blogusecase.NewBlogUsecase(stores.Posts, sanitize.New())

	engine := router.NewRouter(router.Deps{
		Auth:     authhandler.NewAuthHandler(authUC),
		Accounts: usershandler.NewAccountHandler(accountUC),
		Blogs:    bloghandler.NewBlogHandler(blogUC),
		Tokens:   tokens,
		Limiter:  di.NewRateLimiter(ctx, rdb, cfg.RateLimitMax, cfg.RateLimitWindow),
		Origins:  []string{cfg.FrontendURL, cfg.PublicBaseURL()},
		Checks:   checks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	if err := notifier.Wait(shutdownCtx); err != nil {
		slog.Warn("pending emails abandoned", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if err := stores.Close(shutdownCtx); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}
