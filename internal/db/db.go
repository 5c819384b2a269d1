package db

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI        string
	Database   string
	Collection string
}

type DB struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Init connects to MongoDB and verifies the connection with a ping. The
// returned handle is the single shared store resource for a run; callers own
// exactly one Close.
func Init(ctx context.Context, cfg Config) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	return &DB{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// EnsureIndexes creates the query indexes the browsing UI relies on:
// timestamp, device, and the compound (device, timestamp). Run once before
// the first ingestion; idempotent on re-run.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	slog.InfoContext(ctx, "Ensuring collection indexes...")
	_, err := db.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "device", Value: 1}}},
		{Keys: bson.D{{Key: "device", Value: 1}, {Key: "timestamp", Value: 1}}},
	})
	return err
}

func (db *DB) Close(ctx context.Context) {
	if err := db.client.Disconnect(ctx); err != nil {
		slog.ErrorContext(ctx, "Error disconnecting from store", "error", err)
	}
}
