package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config selects the MongoDB deployment and the console profile whose
// session entries are stored there.
type Config struct {
	URI      string
	Database string
	Profile  string
	Timeout  time.Duration
}

// Open connects, pings, makes sure console_state is indexed by profile and
// returns a Store for cfg.Profile. The Store owns the client.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	openCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(openCtx, options.Client().
		ApplyURI(cfg.URI).
		SetAppName("defmctl").
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(openCtx, nil); err != nil {
		_ = client.Disconnect(openCtx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewStore(client.Database(cfg.Database), cfg.Profile)
	_, err = s.coll.Indexes().CreateOne(openCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "profile", Value: 1}},
		Options: options.Index().SetName("profile"),
	})
	if err != nil {
		_ = client.Disconnect(openCtx)
		return nil, fmt.Errorf("mongo index %s: %w", stateCollection, err)
	}
	return s, nil
}
