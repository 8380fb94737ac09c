// Package dto defines the request and response bodies of the blog endpoints.
package dto

// CreatePostReq is the body of POST /api/blogs.
type CreatePostReq struct {
	Title   string   `json:"title" binding:"required,min=4,max=200"`
	Content string   `json:"content" binding:"required,min=10"`
	Tags    []string `json:"tags" binding:"omitempty,max=5,dive,min=2,max=20"`
}

// UpdatePostReq is the body of PUT /api/blogs/:id. Omitted fields are left unchanged.
// Tag limits are checked by the usecase.
type UpdatePostReq struct {
	Title       *string   `json:"title" binding:"omitempty,min=4,max=200"`
	Content     *string   `json:"content" binding:"omitempty,min=10"`
	Tags        *[]string `json:"tags"`
	IsPublished *bool     `json:"isPublished"`
}

// CommentReq is the body of POST /api/blogs/:id/comments.
type CommentReq struct {
	Content string `json:"content" binding:"required,max=500"`
}

// ListQuery is the query string of GET /api/blogs. Non-numeric page or limit fails binding;
// out-of-range values are normalised by the usecase.
type ListQuery struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Tag   string `form:"tag"`
}
