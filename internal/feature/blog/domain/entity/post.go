// Package entity defines the domain entities for the blog feature.
package entity

import "time"

// Author is the public projection of a user attached to posts and comments.
// Name and Email are empty when the account no longer exists.
type Author struct {
	ID    string
	Name  string
	Email string
}

// Comment belongs to exactly one post; its ID is unique within that post.
type Comment struct {
	ID        string
	Content   string
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Post is a blog post with its comments in insertion order.
type Post struct {
	ID          string
	Title       string
	Content     string
	Author      Author
	Tags        []string
	IsPublished bool
	Comments    []Comment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAuthoredBy reports whether userID wrote the post.
func (p *Post) IsAuthoredBy(userID string) bool {
	return userID != "" && p.Author.ID == userID
}

// VisibleTo reports whether viewerID may read the post. Drafts are visible to their author only;
// an empty viewerID is anonymous.
func (p *Post) VisibleTo(viewerID string) bool {
	return p.IsPublished || p.IsAuthoredBy(viewerID)
}

// Comment returns the comment with id.
func (p *Post) Comment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// CanDeleteComment reports whether userID may remove c: its author or the post's author.
func (p *Post) CanDeleteComment(c *Comment, userID string) bool {
	return userID != "" && (c.Author.ID == userID || p.IsAuthoredBy(userID))
}
