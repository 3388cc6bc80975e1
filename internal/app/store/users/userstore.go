package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/nutrihub/internal/app/system/normalize"
	"github.com/dalemusser/nutrihub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadAuthMethod  = errors.New(`auth_method must be "password"|"google"`)
	errNoEmail        = errors.New("email is required")
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByGoogleSub looks up a user by Google subject id. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"google_sub": sub}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	if u.Email == "" {
		return models.User{}, errNoEmail
	}
	if !models.IsValidAuthMethod(u.AuthMethod) {
		return models.User{}, errBadAuthMethod
	}
	if u.Status == "" {
		u.Status = "active"
	}
	u.Profile.DisplayName = normalize.Name(u.Profile.DisplayName)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// LinkGoogle records the Google subject id on an existing user so later
// sign-ins resolve by sub rather than email.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, sub string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"google_sub": sub,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("link google: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
