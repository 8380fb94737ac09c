// Package handler provides the HTTP handlers of the blog feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/blog/domain"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/transport/http/dto"
	"blog_backend/internal/feature/blog/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
	"blog_backend/internal/platform/validation"
)

// BlogUsecase defines the post and comment operations.
type BlogUsecase interface {
	Create(ctx context.Context, authorID string, in usecase.NewPost) (*entity.Post, error)
	List(ctx context.Context, q usecase.ListQuery) (*usecase.PostPage, error)
	Get(ctx context.Context, id, viewerID string) (*entity.Post, error)
	Update(ctx context.Context, id, actorID string, patch usecase.PostPatch) (*entity.Post, error)
	Delete(ctx context.Context, id, actorID string) error
	AddComment(ctx context.Context, postID, actorID, content string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, actorID string) error
}

// BlogHandler serves /api/blogs.
type BlogHandler struct {
	blogs BlogUsecase
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(blogs BlogUsecase) *BlogHandler {
	return &BlogHandler{blogs: blogs}
}

// List handles GET /api/blogs.
func (h *BlogHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		slog.Warn("blog list query invalid", "error", err, "remote_addr", c.ClientIP())
		badRequest(c, err)
		return
	}

	page, err := h.blogs.List(c.Request.Context(), usecase.ListQuery{Page: q.Page, Limit: q.Limit, Tag: q.Tag})
	if err != nil {
		respondError(c, "list blogs", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListRes(page))
}

// Get handles GET /api/blogs/:id. The caller may be anonymous.
func (h *BlogHandler) Get(c *gin.Context) {
	p, err := h.blogs.Get(c.Request.Context(), c.Param("id"), jwtmw.UserIDFrom(c))
	if err != nil {
		respondError(c, "get blog", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPostRes(p))
}

// Create handles POST /api/blogs.
func (h *BlogHandler) Create(c *gin.Context) {
	var req dto.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("blog create validation failed", "error", err, "remote_addr", c.ClientIP())
		badRequest(c, err)
		return
	}

	p, err := h.blogs.Create(c.Request.Context(), jwtmw.UserIDFrom(c), usecase.NewPost{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		respondError(c, "create blog", err)
		return
	}
	slog.Info("blog created", "blog_id", p.ID, "author_id", p.Author.ID)
	c.JSON(http.StatusCreated, dto.NewPostRes(p))
}

// Update handles PUT /api/blogs/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	var req dto.UpdatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("blog update validation failed", "error", err, "remote_addr", c.ClientIP())
		badRequest(c, err)
		return
	}

	p, err := h.blogs.Update(c.Request.Context(), c.Param("id"), jwtmw.UserIDFrom(c), usecase.PostPatch{
		Title:       req.Title,
		Content:     req.Content,
		Tags:        req.Tags,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		respondError(c, "update blog", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPostRes(p))
}

// Delete handles DELETE /api/blogs/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.blogs.Delete(c.Request.Context(), id, jwtmw.UserIDFrom(c)); err != nil {
		respondError(c, "delete blog", err)
		return
	}
	slog.Info("blog deleted", "blog_id", id)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Blog deleted successfully."})
}

// AddComment handles POST /api/blogs/:id/comments.
func (h *BlogHandler) AddComment(c *gin.Context) {
	var req dto.CommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("comment validation failed", "error", err, "remote_addr", c.ClientIP())
		badRequest(c, err)
		return
	}

	comment, err := h.blogs.AddComment(c.Request.Context(), c.Param("id"), jwtmw.UserIDFrom(c), req.Content)
	if err != nil {
		respondError(c, "add comment", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewCommentRes(comment))
}

// DeleteComment handles DELETE /api/blogs/:id/comments/:commentId.
func (h *BlogHandler) DeleteComment(c *gin.Context) {
	err := h.blogs.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), jwtmw.UserIDFrom(c))
	if err != nil {
		respondError(c, "delete comment", err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Comment deleted successfully."})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: api.MsgInvalidRequest, Details: validation.Messages(err)})
}

func respondError(c *gin.Context, op string, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrPostNotFound), errors.Is(err, domain.ErrCommentNotFound):
		status = http.StatusNotFound
	default:
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.MsgInternal})
		return
	}
	slog.Warn(op+" rejected", "error", err, "user_id", jwtmw.UserIDFrom(c), "remote_addr", c.ClientIP())
	c.JSON(status, api.ErrorResponse{Error: err.Error()})
}
