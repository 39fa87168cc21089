package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/finance-advisor/internal/domain"
	"github.com/dvloznov/finance-advisor/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	FullName        string             `bson:"fullName"`
	Email           string             `bson:"email"`
	Password        string             `bson:"password"`
	ProfileImageURL string             `bson:"profileImageUrl,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d userDocument) toDomain() domain.User {
	return domain.User{
		ID:              d.ID.Hex(),
		FullName:        d.FullName,
		Email:           d.Email,
		PasswordHash:    d.Password,
		ProfileImageURL: d.ProfileImageURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// UserRepository stores account holders in the users collection.
type UserRepository struct {
	users *mongo.Collection
	now   func() time.Time
}

// NewUserRepository creates a repository over db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection(usersCollection), now: time.Now}
}

// Create implements store.UserStore. A duplicate email is reported as
// domain.ErrEmailTaken; the unique index on email enforces it.
func (r *UserRepository) Create(ctx context.Context, u domain.User) (domain.User, error) {
	now := r.now()
	doc := userDocument{
		FullName:        u.FullName,
		Email:           u.Email,
		Password:        u.PasswordHash,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.User{}, domain.ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("%w: Create: %w", domain.ErrStoreUnavailable, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (domain.User, error) {
	var doc userDocument
	err := r.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
	}
	return doc.toDomain(), nil
}

// FindByEmail implements store.UserStore.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, "FindByEmail", bson.M{"email": email})
}

// FindByID implements store.UserStore.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("FindByID: %s: %w", id, domain.ErrNotFound)
	}
	return r.findOne(ctx, "FindByID", bson.M{"_id": oid})
}

// Update implements store.UserStore. Only the profile fields change.
func (r *UserRepository) Update(ctx context.Context, u domain.User) (domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("Update: %s: %w", u.ID, domain.ErrNotFound)
	}

	update := bson.M{"$set": bson.M{
		"fullName":        u.FullName,
		"profileImageUrl": u.ProfileImageURL,
		"updatedAt":       r.now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err = r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.User{}, fmt.Errorf("Update: %s: %w", u.ID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: Update: %w", domain.ErrStoreUnavailable, err)
	}
	return doc.toDomain(), nil
}

var _ store.UserStore = (*UserRepository)(nil)
