package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blog_backend/internal/feature/blog/domain"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

// usersTable is read to populate post and comment authors.
const usersTable = "users"

// postGorm implements usecase.PostRepository on top of GORM (PostgreSQL or SQLite).
type postGorm struct {
	db *gorm.DB
}

var _ usecase.PostRepository = (*postGorm)(nil)

// NewPostGorm creates a GORM-backed post repository.
func NewPostGorm(db *gorm.DB) *postGorm {
	return &postGorm{db: db}
}

// Create inserts the post row and its tags in one transaction.
func (r *postGorm) Create(ctx context.Context, p *entity.Post) error {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(PostModelFromEntity(p)).Error; err != nil {
			return err
		}
		return insertTags(tx, p.ID, p.Tags)
	})
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []entity.Comment{}
	}
	return r.populate(ctx, []*entity.Post{p})
}

// FindByID returns the post with tags, comments and authors.
func (r *postGorm) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	var m PostModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	p := m.ToEntity()
	if err := r.loadChildren(ctx, []*entity.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublished returns one page of published posts, newest first.
func (r *postGorm) ListPublished(ctx context.Context, tag string, offset, limit int) ([]*entity.Post, int64, error) {
	published := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&PostModel{}).Where("is_published = ?", true)
		if tag != "" {
			q = q.Where("id IN (?)", r.db.Model(&PostTagModel{}).Select("post_id").Where("tag = ?", tag))
		}
		return q
	}

	var total int64
	if err := published().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	var models []PostModel
	err := published().
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]*entity.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].ToEntity())
	}
	if err := r.loadChildren(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update rewrites the editable columns and replaces the tag rows.
func (r *postGorm) Update(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now().UTC()
	m := PostModelFromEntity(p)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PostModel{ID: p.ID}).
			Select("title", "content", "is_published", "updated_at").
			Updates(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPostNotFound
		}
		if err := tx.Where("post_id = ?", p.ID).Delete(&PostTagModel{}).Error; err != nil {
			return err
		}
		return insertTags(tx, p.ID, p.Tags)
	})
	if errors.Is(err, domain.ErrPostNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes the post with its tags and comments.
func (r *postGorm) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&PostTagModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrPostNotFound
		}
		return nil
	})
	if errors.Is(err, domain.ErrPostNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// AddComment inserts one comment row. Concurrent appends never overwrite each other.
func (r *postGorm) AddComment(ctx context.Context, postID string, c *entity.Comment) error {
	now := time.Now().UTC()
	m := &CommentModel{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  c.Author.ID,
		Content:   c.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&PostModel{}).Where("id = ?", postID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrPostNotFound
		}
		return tx.Create(m).Error
	})
	if errors.Is(err, domain.ErrPostNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}

	*c = m.toEntity()
	authors, err := r.authors(ctx, []string{c.Author.ID})
	if err != nil {
		return err
	}
	c.Author = authorOrID(authors, c.Author.ID)
	return nil
}

// DeleteComment removes one comment row.
func (r *postGorm) DeleteComment(ctx context.Context, postID, commentID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", commentID, postID).Delete(&CommentModel{})
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

// loadChildren attaches tags, comments and authors to posts with two batched queries plus the author lookup.
func (r *postGorm) loadChildren(ctx context.Context, posts []*entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Post, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	var tags []PostTagModel
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("post_id").Order("position").Find(&tags).Error; err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	for _, t := range tags {
		p := byID[t.PostID]
		p.Tags = append(p.Tags, t.Tag)
	}

	var comments []CommentModel
	if err := r.db.WithContext(ctx).Where("post_id IN ?", ids).Order("created_at").Order("id").Find(&comments).Error; err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	for i := range comments {
		p := byID[comments[i].PostID]
		p.Comments = append(p.Comments, comments[i].toEntity())
	}

	return r.populate(ctx, posts)
}

// populate fills Author name and email on posts and their comments.
func (r *postGorm) populate(ctx context.Context, posts []*entity.Post) error {
	authors, err := r.authors(ctx, authorIDs(posts))
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Author = authorOrID(authors, p.Author.ID)
		for i := range p.Comments {
			p.Comments[i].Author = authorOrID(authors, p.Comments[i].Author.ID)
		}
	}
	return nil
}

func (r *postGorm) authors(ctx context.Context, ids []string) (map[string]entity.Author, error) {
	out := make(map[string]entity.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []entity.Author
	err := r.db.WithContext(ctx).Table(usersTable).Select("id, name, email").Where("id IN ?", ids).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	for _, a := range rows {
		out[a.ID] = a
	}
	return out, nil
}

func insertTags(tx *gorm.DB, postID string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := tagModels(postID, tags)
	return tx.Create(&rows).Error
}

func authorIDs(posts []*entity.Post) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.Author.ID)
		for _, c := range p.Comments {
			add(c.Author.ID)
		}
	}
	return ids
}

func authorOrID(authors map[string]entity.Author, id string) entity.Author {
	if a, ok := authors[id]; ok {
		return a
	}
	return entity.Author{ID: id}
}
