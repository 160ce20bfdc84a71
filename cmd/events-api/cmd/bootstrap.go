package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventhub/events-api/internal/infrastructure/config"
	mongodb "github.com/eventhub/events-api/internal/infrastructure/db/mongo"
	"github.com/eventhub/events-api/pkg/logger"
)

const serviceName = "events-api"

// loadConfig reads the environment and initialises the process logger,
// letting --log-level override LOG_LEVEL.
func loadConfig(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  logPretty || cfg.IsDevelopment(),
		Service: serviceName,
	})
	return cfg, log, nil
}

// connectMongo opens the database and makes sure the indexes the
// repositories rely on exist.
func connectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		return nil, nil, err
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return client, db, nil
}
