// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no user document exists for the id.
var ErrNotFound = errors.New("profile not found")

// Store reads and writes the profile fields kept inline on users documents.
type Store struct {
	c *mongo.Collection
}

// New creates a new profile store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var profileProjection = bson.M{
	"displayName": 1,
	"phoneNumber": 1,
	"country":     1,
	"gender":      1,
	"age":         1,
	"weight":      1,
	"height":      1,
	"activity":    1,
}

// Profile returns the profile for a user, or ErrNotFound.
func (s *Store) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	var p models.UserProfile
	opts := options.FindOne().SetProjection(profileProjection)
	err := s.c.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile %s: %w", userID.Hex(), err)
	}
	return &p, nil
}

// Save overwrites every profile field on the user document.
func (s *Store) Save(ctx context.Context, userID primitive.ObjectID, p models.UserProfile) error {
	update := bson.M{
		"$set": bson.M{
			"displayName": p.DisplayName,
			"phoneNumber": p.PhoneNumber,
			"country":     p.Country,
			"gender":      p.Gender,
			"age":         p.Age,
			"weight":      p.Weight,
			"height":      p.Height,
			"activity":    p.Activity,
			"updated_at":  time.Now().UTC(),
		},
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", userID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
