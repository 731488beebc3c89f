package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds the MongoDB connection settings.
type Config struct {
	URI            string // "mongodb://localhost:27017"
	Database       string
	ConnectTimeout time.Duration
}

// NewClient connects to MongoDB, pings the primary and returns the database handle.
func NewClient(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("MONGO_URI configuration is required")
	}
	if cfg.Database == "" {
		return nil, nil, fmt.Errorf("MONGO_DATABASE configuration is required")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
