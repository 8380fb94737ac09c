package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"blog_backend/internal/feature/blog/domain"
	"blog_backend/internal/feature/blog/domain/entity"
	"blog_backend/internal/feature/blog/usecase"
)

// Collection names used by the MongoDB post store.
const (
	BlogsCollection = "blogs"
	usersCollection = "users"
)

type commentDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Content   string        `bson:"content"`
	Author    string        `bson:"author"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

type postDocument struct {
	ID          bson.ObjectID     `bson:"_id,omitempty"`
	Title       string            `bson:"title"`
	Content     string            `bson:"content"`
	Author      string            `bson:"author"`
	Tags        []string          `bson:"tags"`
	IsPublished bool              `bson:"isPublished"`
	Comments    []commentDocument `bson:"comments"`
	CreatedAt   time.Time         `bson:"createdAt"`
	UpdatedAt   time.Time         `bson:"updatedAt"`
}

func (d *postDocument) toEntity() *entity.Post {
	p := &entity.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Content:     d.Content,
		Author:      entity.Author{ID: d.Author},
		Tags:        append([]string{}, d.Tags...),
		IsPublished: d.IsPublished,
		Comments:    make([]entity.Comment, 0, len(d.Comments)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, c.toEntity())
	}
	return p
}

func (c *commentDocument) toEntity() entity.Comment {
	return entity.Comment{
		ID:        c.ID.Hex(),
		Content:   c.Content,
		Author:    entity.Author{ID: c.Author},
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type authorDocument struct {
	ID    bson.ObjectID `bson:"_id"`
	Name  string        `bson:"name"`
	Email string        `bson:"email"`
}

// postMongo stores each post as one document with its comments embedded.
type postMongo struct {
	posts *mongo.Collection
	users *mongo.Collection
}

var _ usecase.PostRepository = (*postMongo)(nil)

// NewPostMongo creates a MongoDB-backed post repository.
func NewPostMongo(db *mongo.Database) *postMongo {
	return &postMongo{
		posts: db.Collection(BlogsCollection),
		users: db.Collection(usersCollection),
	}
}

// EnsureIndexes creates the listing and lookup indexes.
func (r *postMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create blog indexes: %w", err)
	}
	return nil
}

// Create inserts p as a new document.
func (r *postMongo) Create(ctx context.Context, p *entity.Post) error {
	now := mongoNow()
	doc := postDocument{
		ID:          bson.NewObjectID(),
		Title:       p.Title,
		Content:     p.Content,
		Author:      p.Author.ID,
		Tags:        append([]string{}, p.Tags...),
		IsPublished: p.IsPublished,
		Comments:    []commentDocument{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	*p = *doc.toEntity()
	return r.populate(ctx, []*entity.Post{p})
}

// FindByID returns domain.ErrPostNotFound for unknown or malformed ids.
func (r *postMongo) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrPostNotFound
	}
	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find blog: %w", err)
	}
	p := doc.toEntity()
	if err := r.populate(ctx, []*entity.Post{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublished returns one page of published posts, newest first.
func (r *postMongo) ListPublished(ctx context.Context, tag string, offset, limit int) ([]*entity.Post, int64, error) {
	filter := bson.M{"isPublished": true}
	if tag != "" {
		filter["tags"] = tag
	}

	total, err := r.posts.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count blogs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list blogs: %w", err)
	}
	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode blogs: %w", err)
	}

	posts := make([]*entity.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toEntity())
	}
	if err := r.populate(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update sets the editable fields without touching the embedded comments.
func (r *postMongo) Update(ctx context.Context, p *entity.Post) error {
	oid, err := bson.ObjectIDFromHex(p.ID)
	if err != nil {
		return domain.ErrPostNotFound
	}
	now := mongoNow()
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       p.Title,
		"content":     p.Content,
		"tags":        append([]string{}, p.Tags...),
		"isPublished": p.IsPublished,
		"updatedAt":   now,
	}})
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}
	p.UpdatedAt = now
	return nil
}

// Delete removes the document, and with it every comment.
func (r *postMongo) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrPostNotFound
	}
	res, err := r.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// AddComment appends with $push so concurrent comments are never lost.
func (r *postMongo) AddComment(ctx context.Context, postID string, c *entity.Comment) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return domain.ErrPostNotFound
	}
	now := mongoNow()
	doc := commentDocument{
		ID:        bson.NewObjectID(),
		Content:   c.Content,
		Author:    c.Author.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := r.posts.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"comments": doc},
		"$set":  bson.M{"updatedAt": now},
	})
	if err != nil {
		return fmt.Errorf("add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPostNotFound
	}

	*c = doc.toEntity()
	authors, err := r.authors(ctx, []string{c.Author.ID})
	if err != nil {
		return err
	}
	c.Author = authorOrID(authors, c.Author.ID)
	return nil
}

// DeleteComment removes one embedded comment with $pull.
func (r *postMongo) DeleteComment(ctx context.Context, postID, commentID string) error {
	oid, err := bson.ObjectIDFromHex(postID)
	if err != nil {
		return domain.ErrPostNotFound
	}
	cid, err := bson.ObjectIDFromHex(commentID)
	if err != nil {
		return domain.ErrCommentNotFound
	}
	res, err := r.posts.UpdateOne(ctx,
		bson.M{"_id": oid, "comments._id": cid},
		bson.M{
			"$pull": bson.M{"comments": bson.M{"_id": cid}},
			"$set":  bson.M{"updatedAt": mongoNow()},
		})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *postMongo) populate(ctx context.Context, posts []*entity.Post) error {
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

func (r *postMongo) authors(ctx context.Context, ids []string) (map[string]entity.Author, error) {
	out := make(map[string]entity.Author, len(ids))
	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := bson.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	var docs []authorDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	for _, d := range docs {
		out[d.ID.Hex()] = entity.Author{ID: d.ID.Hex(), Name: d.Name, Email: d.Email}
	}
	return out, nil
}

// mongoNow matches the millisecond precision BSON dates are stored with.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
