// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/nutrihub/internal/app/system/indexes"
	"github.com/dalemusser/nutrihub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().ApplyURI(appCfg.MongoURI)
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, timeouts.Ping())
	defer pcancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates or reconciles the collection indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ictx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	if err := indexes.EnsureAll(ictx, deps.MongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("ensure indexes: %w", err)
	}
	logger.Info("indexes ensured")
	return nil
}
