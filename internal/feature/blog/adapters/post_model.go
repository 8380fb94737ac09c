// Package adapters provides the post store implementations.
package adapters

import (
	"time"

	"blog_backend/internal/feature/blog/domain/entity"
)

// PostModel is the GORM model for the posts table. Tags and comments live in their own tables.
type PostModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:200;not null;index"`
	Content     string    `gorm:"type:text;not null"`
	AuthorID    string    `gorm:"size:36;not null;index"`
	IsPublished bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM.
func (PostModel) TableName() string {
	return "posts"
}

// PostTagModel stores one tag of a post; Position keeps the submitted order.
type PostTagModel struct {
	PostID   string `gorm:"primaryKey;size:36"`
	Position int    `gorm:"primaryKey"`
	Tag      string `gorm:"size:20;not null;index"`
}

// TableName returns the table name for GORM.
func (PostTagModel) TableName() string {
	return "post_tags"
}

// CommentModel is one comment row. Rows of a post are read in creation order.
type CommentModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	PostID    string `gorm:"size:36;not null;index"`
	AuthorID  string `gorm:"size:36;not null"`
	Content   string `gorm:"size:500;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (CommentModel) TableName() string {
	return "post_comments"
}

// Models lists every table the gorm post store needs, for migrations.
func Models() []any {
	return []any{&PostModel{}, &PostTagModel{}, &CommentModel{}}
}

// ToEntity converts the model into a post without tags or comments.
func (m *PostModel) ToEntity() *entity.Post {
	return &entity.Post{
		ID:          m.ID,
		Title:       m.Title,
		Content:     m.Content,
		Author:      entity.Author{ID: m.AuthorID},
		Tags:        []string{},
		IsPublished: m.IsPublished,
		Comments:    []entity.Comment{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// PostModelFromEntity converts a domain post into its row.
func PostModelFromEntity(p *entity.Post) *PostModel {
	return &PostModel{
		ID:          p.ID,
		Title:       p.Title,
		Content:     p.Content,
		AuthorID:    p.Author.ID,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func tagModels(postID string, tags []string) []PostTagModel {
	out := make([]PostTagModel, 0, len(tags))
	for i, t := range tags {
		out = append(out, PostTagModel{PostID: postID, Position: i, Tag: t})
	}
	return out
}

func (m *CommentModel) toEntity() entity.Comment {
	return entity.Comment{
		ID:        m.ID,
		Content:   m.Content,
		Author:    entity.Author{ID: m.AuthorID},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
