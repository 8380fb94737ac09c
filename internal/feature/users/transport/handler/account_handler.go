// Package handler provides the HTTP handlers of the users feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	authdto "blog_backend/internal/feature/auth/transport/http/dto"
	"blog_backend/internal/feature/users/transport/http/dto"
	"blog_backend/internal/feature/users/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/validation"
	"blog_backend/internal/shared/password"
)

// AccountUsecase defines the account operations used by AccountHandler.
type AccountUsecase interface {
	GetSelf(ctx context.Context, id string) (*entity.User, error)
	UpdateSelf(ctx context.Context, id string, patch usecase.ProfilePatch) (*entity.User, error)
	ChangePassword(ctx context.Context, id, current, newPassword string) error
	DeleteSelf(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*entity.User, error)
	DeleteByID(ctx context.Context, id string) error
}

// AccountHandler serves /api/users. Every route sits behind jwtmw.Authorize.
type AccountHandler struct {
	accounts AccountUsecase
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accounts AccountUsecase) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Me handles GET /api/users/me.
func (h *AccountHandler) Me(c *gin.Context) {
	user, err := h.accounts.GetSelf(c.Request.Context(), jwtmw.UserIDFrom(c))
	if err != nil {
		respondError(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewUserRes(user))
}

// Update handles PUT /api/users/update.
func (h *AccountHandler) Update(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("profile update validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest, Details: validation.Messages(err)})
		return
	}

	user, err := h.accounts.UpdateSelf(c.Request.Context(), jwtmw.UserIDFrom(c), usecase.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewUserRes(user))
}

// ChangePassword handles PUT /api/users/password.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("password change validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest, Details: validation.Messages(err)})
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), jwtmw.UserIDFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, "change password", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Password updated successfully."})
}

// DeleteMe handles DELETE /api/users/me.
func (h *AccountHandler) DeleteMe(c *gin.Context) {
	id := jwtmw.UserIDFrom(c)
	if err := h.accounts.DeleteSelf(c.Request.Context(), id); err != nil {
		respondError(c, "delete account", err)
		return
	}
	slog.Info("account deleted", "user_id", id, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Account deleted successfully."})
}

// List handles GET /api/users (admin).
func (h *AccountHandler) List(c *gin.Context) {
	users, err := h.accounts.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, "list users", err)
		return
	}
	c.JSON(http.StatusOK, authdto.NewUserResList(users))
}

// DeleteByID handles DELETE /api/users/:id (admin).
func (h *AccountHandler) DeleteByID(c *gin.Context) {
	id := c.Param("id")
	if err := h.accounts.DeleteByID(c.Request.Context(), id); err != nil {
		respondError(c, "delete user", err)
		return
	}
	slog.Info("user deleted by admin", "user_id", id, "admin_id", jwtmw.UserIDFrom(c))
	c.JSON(http.StatusOK, api.MessageResponse{Message: "User deleted successfully."})
}

func respondError(c *gin.Context, op string, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrIncorrectPassword),
		errors.Is(err, domain.ErrUserAlreadyExists),
		errors.Is(err, password.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		return
	}
	slog.Warn(op+" rejected", "error", err, "remote_addr", c.ClientIP())
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}
