// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup fails fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureNutrition(ctx, db); err != nil {
		problems = append(problems, "nutrition_data: "+err.Error())
	}
	if err := ensureOAuthStates(ctx, db); err != nil {
		problems = append(problems, "oauth_states: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

func ttlVal(p *int32) int32 {
	if p == nil {
		return -1
	}
	return *p
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates each desired index, reusing an existing index with
// the same keys and options and recreating one whose name or options drifted.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		var ttl *int32
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
			ttl = m.Options.ExpireAfterSeconds
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if boolVal(ex.Unique) == boolVal(unique) && ttlVal(ex.ExpireAfterSeconds) == ttlVal(ttl) &&
				(name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			zap.L().Info("dropped drifted index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			if wafflemongo.IsDup(err) && boolVal(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", created),
			zap.String("keys", sig),
			zap.Bool("unique", boolVal(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// Google sign-in lookup; sparse so password users without a sub don't collide.
		{
			Keys:    bson.D{{Key: "google_sub", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_google_sub"),
		},
	})
}

func ensureNutrition(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("nutrition_data"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_nutrition_user_date"),
		},
	})
}

func ensureOAuthStates(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("oauth_states"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_oauth_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_oauth_expires_ttl"),
		},
	})
}
