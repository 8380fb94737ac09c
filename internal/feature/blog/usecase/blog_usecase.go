// Package usecase implements the post and comment rules: authorship, draft visibility and pagination.
package usecase

import (
	"context"
	"fmt"
	"html"
	"math"
	"unicode/utf8"

	"blog_backend/internal/feature/blog/domain"
	"blog_backend/internal/feature/blog/domain/entity"
)

// Field limits for posts and comments.
const (
	TitleMinLen      = 4
	TitleMaxLen      = 200
	ContentMinLen    = 10
	MaxTags          = 5
	TagMinLen        = 2
	TagMaxLen        = 20
	CommentMaxLen    = 500
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PostRepository persists posts with their tags and comments.
// Following Go convention, the interface is defined by the consumer (usecase), not the provider (adapters).
type PostRepository interface {
	// Create stores p, assigning its ID and timestamps, and populates p.Author.
	Create(ctx context.Context, p *entity.Post) error

	// FindByID returns the post with comments and populated authors, or domain.ErrPostNotFound.
	FindByID(ctx context.Context, id string) (*entity.Post, error)

	// ListPublished returns one page of published posts, newest first, and the number of matching posts.
	ListPublished(ctx context.Context, tag string, offset, limit int) ([]*entity.Post, int64, error)

	// Update overwrites title, content, tags and isPublished, and refreshes p.UpdatedAt.
	Update(ctx context.Context, p *entity.Post) error

	// Delete removes the post and its comments.
	Delete(ctx context.Context, id string) error

	// AddComment appends c to the post atomically, assigning its ID and timestamps and populating c.Author.
	AddComment(ctx context.Context, postID string, c *entity.Comment) error

	// DeleteComment removes one comment atomically. Returns domain.ErrCommentNotFound when it is gone.
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// Sanitizer cleans user input before it is stored.
type Sanitizer interface {
	Text(s string) string
	RichText(s string) string
}

// NewPost is the input of Create.
type NewPost struct {
	Title   string
	Content string
	Tags    []string
}

// PostPatch is a partial update. A nil field is left unchanged.
type PostPatch struct {
	Title       *string
	Content     *string
	Tags        *[]string
	IsPublished *bool
}

// ListQuery selects a page of published posts.
type ListQuery struct {
	Page  int
	Limit int
	Tag   string
}

// PostPage is one page of the published listing.
type PostPage struct {
	Posts       []*entity.Post
	TotalPages  int
	CurrentPage int
}

type blogUsecase struct {
	posts    PostRepository
	sanitize Sanitizer
}

// NewBlogUsecase creates the post and comment operations.
func NewBlogUsecase(posts PostRepository, sanitize Sanitizer) *blogUsecase {
	return &blogUsecase{posts: posts, sanitize: sanitize}
}

// Create stores a new draft written by authorID.
func (u *blogUsecase) Create(ctx context.Context, authorID string, in NewPost) (*entity.Post, error) {
	p := &entity.Post{
		Title:   u.sanitize.Text(in.Title),
		Content: u.sanitize.RichText(in.Content),
		Tags:    u.cleanTags(in.Tags),
		Author:  entity.Author{ID: authorID},
	}
	if err := validatePost(p); err != nil {
		return nil, err
	}
	if err := u.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return p, nil
}

// List returns published posts, newest first. Page defaults to 1; limit defaults to
// DefaultPageLimit and is capped at MaxPageLimit.
func (u *blogUsecase) List(ctx context.Context, q ListQuery) (*PostPage, error) {
	page := max(q.Page, 1)
	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageLimit
	}
	limit = min(limit, MaxPageLimit)

	posts, total, err := u.posts.ListPublished(ctx, u.sanitize.Text(q.Tag), (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return &PostPage{
		Posts:       posts,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		CurrentPage: page,
	}, nil
}

// Get returns a post. Drafts are only returned to their author; viewerID is "" for anonymous callers.
func (u *blogUsecase) Get(ctx context.Context, id, viewerID string) (*entity.Post, error) {
	p, err := u.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(viewerID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

// Update applies patch to a post owned by actorID.
func (u *blogUsecase) Update(ctx context.Context, id, actorID string, patch PostPatch) (*entity.Post, error) {
	p, err := u.owned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		p.Title = u.sanitize.Text(*patch.Title)
	}
	if patch.Content != nil {
		p.Content = u.sanitize.RichText(*patch.Content)
	}
	if patch.Tags != nil {
		p.Tags = u.cleanTags(*patch.Tags)
	}
	if patch.IsPublished != nil {
		p.IsPublished = *patch.IsPublished
	}
	if err := validatePost(p); err != nil {
		return nil, err
	}

	if err := u.posts.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return p, nil
}

// Delete removes a post owned by actorID together with its comments.
func (u *blogUsecase) Delete(ctx context.Context, id, actorID string) error {
	if _, err := u.owned(ctx, id, actorID); err != nil {
		return err
	}
	return u.posts.Delete(ctx, id)
}

// AddComment appends a comment by actorID. Comments on a draft are limited to its author.
func (u *blogUsecase) AddComment(ctx context.Context, postID, actorID, content string) (*entity.Comment, error) {
	p, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !p.VisibleTo(actorID) {
		return nil, domain.ErrForbidden
	}

	c := &entity.Comment{
		Content: u.sanitize.Text(content),
		Author:  entity.Author{ID: actorID},
	}
	if n := utf8.RuneCountInString(c.Content); n < 1 || n > CommentMaxLen {
		return nil, fmt.Errorf("%w: comment must be between 1 and %d characters", domain.ErrInvalidInput, CommentMaxLen)
	}
	if err := u.posts.AddComment(ctx, postID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. Allowed for the comment's author and the post's author.
func (u *blogUsecase) DeleteComment(ctx context.Context, postID, commentID, actorID string) error {
	p, err := u.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	c, ok := p.Comment(commentID)
	if !ok {
		return domain.ErrCommentNotFound
	}
	if !p.CanDeleteComment(c, actorID) {
		return domain.ErrForbidden
	}
	return u.posts.DeleteComment(ctx, postID, commentID)
}

func (u *blogUsecase) owned(ctx context.Context, id, actorID string) (*entity.Post, error) {
	p, err := u.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsAuthoredBy(actorID) {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (u *blogUsecase) cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, u.sanitize.Text(t))
	}
	return out
}

func validatePost(p *entity.Post) error {
	if n := utf8.RuneCountInString(p.Title); n < TitleMinLen || n > TitleMaxLen {
		return fmt.Errorf("%w: title must be between %d and %d characters", domain.ErrInvalidInput, TitleMinLen, TitleMaxLen)
	}
	// content keeps its markup escaped; count what a reader sees
	if utf8.RuneCountInString(html.UnescapeString(p.Content)) < ContentMinLen {
		return fmt.Errorf("%w: content must be at least %d characters", domain.ErrInvalidInput, ContentMinLen)
	}
	if len(p.Tags) > MaxTags {
		return fmt.Errorf("%w: maximum %d tags allowed", domain.ErrInvalidInput, MaxTags)
	}
	for _, t := range p.Tags {
		if n := utf8.RuneCountInString(t); n < TagMinLen || n > TagMaxLen {
			return fmt.Errorf("%w: each tag must be between %d and %d characters", domain.ErrInvalidInput, TagMinLen, TagMaxLen)
		}
	}
	return nil
}
