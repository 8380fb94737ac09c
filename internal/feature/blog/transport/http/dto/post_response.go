package dto

import (
	"time"

	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

// AuthorRes is the populated author of a post or comment.
type AuthorRes struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CommentRes is one comment.
type CommentRes struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    AuthorRes `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostRes is one post with its comments.
type PostRes struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Content     string       `json:"content"`
	Author      AuthorRes    `json:"author"`
	Tags        []string     `json:"tags"`
	IsPublished bool         `json:"isPublished"`
	Comments    []CommentRes `json:"comments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ListRes is the body of GET /api/blogs.
type ListRes struct {
	Blogs       []PostRes `json:"blogs"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}

func newAuthorRes(a entity.Author) AuthorRes {
	return AuthorRes{ID: a.ID, Name: a.Name, Email: a.Email}
}

// NewCommentRes projects c.
func NewCommentRes(c *entity.Comment) CommentRes {
	return CommentRes{
		ID:        c.ID,
		Content:   c.Content,
		Author:    newAuthorRes(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// NewPostRes projects p. Tags and comments are always arrays in JSON.
func NewPostRes(p *entity.Post) PostRes {
	res := PostRes{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		Author:      newAuthorRes(p.Author),
		Tags:        append([]string{}, p.Tags...),
		IsPublished: p.IsPublished,
		Comments:    make([]CommentRes, 0, len(p.Comments)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range p.Comments {
		res.Comments = append(res.Comments, NewCommentRes(&p.Comments[i]))
	}
	return res
}

// NewListRes projects a page of the listing.
func NewListRes(page *usecase.PostPage) ListRes {
	res := ListRes{
		Blogs:       make([]PostRes, 0, len(page.Posts)),
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
	for _, p := range page.Posts {
		res.Blogs = append(res.Blogs, NewPostRes(p))
	}
	return res
}
