// Package router assembles the gin engine and its route table.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/feature/auth/domain/entity"
	authhandler "blog_backend/internal/feature/auth/transport/handler"
	bloghandler "blog_backend/internal/feature/blog/transport/handler"
	usershandler "blog_backend/internal/feature/users/transport/handler"
	"blog_backend/internal/platform/http/handler"
	"blog_backend/internal/platform/http/middleware"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/metrics"
	"blog_backend/internal/shared/ratelimiter"
)

// readinessTimeout bounds every /readyz probe.
const readinessTimeout = 2 * time.Second

// Deps carries everything the route table needs.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Accounts *usershandler.AccountHandler
	Blogs    *bloghandler.BlogHandler

	Tokens  jwtmw.Verifier
	Limiter ratelimiter.Limiter

	// Origins are the browser origins allowed by CORS.
	Origins []string
	Checks  []handler.Check
}

// NewRouter builds the engine. Every /api route is rate limited per client IP.
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(metrics.Middleware(), middleware.SecurityHeaders(middleware.DefaultCSP), middleware.CORS(d.Origins...))

	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	r.GET("/readyz", handler.Readiness(readinessTimeout, d.Checks...))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter))
	}

	authenticated := jwtmw.Authorize(d.Tokens, "")
	admin := jwtmw.Authorize(d.Tokens, entity.RoleAdmin)

	auth := api.Group("/auth")
	{
		auth.POST("/register", d.Auth.Register)
		auth.GET("/verify-email/:code", d.Auth.VerifyEmail)
		auth.POST("/login", d.Auth.Login)
		auth.POST("/forgot-password", d.Auth.ForgotPassword)
		auth.POST("/reset-password", d.Auth.ResetPassword)
	}

	users := api.Group("/users", authenticated)
	{
		users.GET("/me", d.Accounts.Me)
		users.PUT("/update", d.Accounts.Update)
		users.PUT("/password", d.Accounts.ChangePassword)
		users.DELETE("/me", d.Accounts.DeleteMe)
		users.GET("", admin, d.Accounts.List)
		users.DELETE("/:id", admin, d.Accounts.DeleteByID)
	}

	blogs := api.Group("/blogs")
	{
		blogs.GET("", d.Blogs.List)
		blogs.GET("/:id", jwtmw.OptionalAuth(d.Tokens), d.Blogs.Get)
		blogs.POST("", admin, d.Blogs.Create)
		blogs.PUT("/:id", admin, d.Blogs.Update)
		blogs.DELETE("/:id", admin, d.Blogs.Delete)
		blogs.POST("/:id/comments", admin, d.Blogs.AddComment)
		blogs.DELETE("/:id/comments/:commentId", admin, d.Blogs.DeleteComment)
	}

	return r
}
