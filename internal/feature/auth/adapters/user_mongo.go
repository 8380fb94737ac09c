package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"blog_backend/internal/feature/auth/domain"
	"blog_backend/internal/feature/auth/domain/entity"
	authusecase "blog_backend/internal/feature/auth/usecase"
	usersusecase "blog_backend/internal/feature/users/usecase"
)

// UsersCollection is the MongoDB collection holding user documents.
const UsersCollection = "users"

type userDocument struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	Name             string        `bson:"name"`
	Email            string        `bson:"email"`
	Password         string        `bson:"password"`
	Role             string        `bson:"role"`
	IsVerified       bool          `bson:"isVerified"`
	VerificationCode *string       `bson:"verificationCode"`
	CreatedAt        time.Time     `bson:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Email:            d.Email,
		PasswordHash:     d.Password,
		Role:             d.Role,
		IsVerified:       d.IsVerified,
		VerificationCode: d.VerificationCode,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// userMongo implements the user repositories on MongoDB.
type userMongo struct {
	coll *mongo.Collection
}

var (
	_ authusecase.UserRepository  = (*userMongo)(nil)
	_ usersusecase.UserRepository = (*userMongo)(nil)
)

// NewUserMongo creates a MongoDB-backed user repository.
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique name/email indexes and the code lookup index.
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verificationCode", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// Create inserts u and assigns its ObjectID.
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:               bson.NewObjectID(),
		Name:             u.Name,
		Email:            u.Email,
		Password:         u.PasswordHash,
		Role:             u.Role,
		IsVerified:       u.IsVerified,
		VerificationCode: u.VerificationCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	*u = *doc.toEntity()
	return nil
}

// FindByID returns domain.ErrUserNotFound for unknown or malformed ids.
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail returns domain.ErrUserNotFound when email is unknown.
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByEmailOrName returns the first user holding either value.
func (r *userMongo) FindByEmailOrName(ctx context.Context, email, name string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{bson.M{"email": email}, bson.M{"name": name}}})
}

// FindByVerificationCode returns the user holding code.
func (r *userMongo) FindByVerificationCode(ctx context.Context, code string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"verificationCode": code})
}

// Update replaces the mutable fields of u in a single document write.
func (r *userMongo) Update(ctx context.Context, u *entity.User) error {
	oid, err := bson.ObjectIDFromHex(u.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":             u.Name,
		"email":            u.Email,
		"password":         u.PasswordHash,
		"role":             u.Role,
		"isVerified":       u.IsVerified,
		"verificationCode": u.VerificationCode,
		"updatedAt":        now,
	}})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = now
	return nil
}

// Delete removes the user with id.
func (r *userMongo) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns every user, oldest first.
func (r *userMongo) List(ctx context.Context) ([]*entity.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]*entity.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toEntity())
	}
	return users, nil
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toEntity(), nil
}
