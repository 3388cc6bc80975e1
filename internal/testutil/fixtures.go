package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/nutrihub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// CompleteProfile returns a profile with every required field filled in.
func CompleteProfile() models.UserProfile {
	return models.UserProfile{
		DisplayName: "Ada Lovelace",
		PhoneNumber: "+1 555 0100",
		Country:     "UK",
		Gender:      "female",
		Age:         36,
		Weight:      58,
		Height:      165,
		Activity:    "moderate",
	}
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts an active password user with the given email and profile.
func (f *Fixtures) CreateUser(ctx context.Context, email string, profile models.UserProfile) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Email:      email,
		AuthMethod: models.AuthMethodPassword,
		Status:     "active",
		Profile:    profile,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateNutrition inserts a nutrition record for the user on the given date.
func (f *Fixtures) CreateNutrition(ctx context.Context, userID primitive.ObjectID, date string, calories, protein, fat, carbs, fiber float64) models.NutritionRecord {
	f.t.Helper()

	rec := models.NutritionRecord{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Date:      date,
		Calories:  calories,
		Protein:   protein,
		Fat:       fat,
		Carbs:     carbs,
		Fiber:     fiber,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("nutrition_data").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create nutrition record: %v", err)
	}
	return rec
}

// nutritionFields are the document keys NutritionRecord owns. A micro entry
// with one of these names would clash with the record's own fields.
var nutritionFields = map[string]bool{
	"_id": true, "user_id": true, "date": true, "updated_at": true,
	"calories": true, "protein": true, "fat": true, "carbs": true, "fiber": true,
}

// nutritionSet builds the $set document for rec, dropping micro entries
// that collide with the record's own fields.
func nutritionSet(rec models.NutritionRecord, now time.Time) bson.M {
	set := bson.M{
		"calories":   rec.Calories,
		"protein":    rec.Protein,
		"fat":        rec.Fat,
		"carbs":      rec.Carbs,
		"fiber":      rec.Fiber,
		"updated_at": now,
	}
	for k, v := range rec.Micros {
		if nutritionFields[k] {
			continue
		}
		set[k] = v
	}
	return set
}

// UpsertNutrition writes rec for (rec.UserID, rec.Date), replacing the
// previous totals for that day and keeping micro entries. The app only
// reads nutrition data; tests seed it through here.
func (f *Fixtures) UpsertNutrition(ctx context.Context, rec models.NutritionRecord) {
	f.t.Helper()

	update := bson.M{
		"$set":         nutritionSet(rec, time.Now().UTC()),
		"$setOnInsert": bson.M{"_id": primitive.NewObjectID()},
	}
	filter := bson.M{"user_id": rec.UserID, "date": rec.Date}
	if _, err := f.db.Collection("nutrition_data").UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		f.t.Fatalf("failed to upsert nutrition record: %v", err)
	}
}
