// internal/app/store/nutrition/nutritionstore.go
package nutritionstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the nutrition_data collection.
// One document per (user_id, date); date is yyyy-MM-dd.
type Store struct {
	c *mongo.Collection
}

// New creates a new nutrition store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("nutrition_data")}
}

// ByDate returns the record for the user on date, or nil, nil when none exists.
func (s *Store) ByDate(ctx context.Context, userID primitive.ObjectID, date string) (*models.NutritionRecord, error) {
	var rec models.NutritionRecord
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "date": date}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find nutrition %s/%s: %w", userID.Hex(), date, err)
	}
	return &rec, nil
}

// Range returns the user's records with from <= date <= to, oldest first.
// yyyy-MM-dd strings sort chronologically, so the bounds compare as strings.
func (s *Store) Range(ctx context.Context, userID primitive.ObjectID, from, to string) ([]models.NutritionRecord, error) {
	filter := bson.M{
		"user_id": userID,
		"date":    bson.M{"$gte": from, "$lte": to},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find nutrition range: %w", err)
	}
	defer cur.Close(ctx)

	var out []models.NutritionRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode nutrition range: %w", err)
	}
	return out, nil
}
