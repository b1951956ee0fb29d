package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/defm/console/internal/core/ports"
)

const stateCollection = "console_state"

// Store keeps each session entry as one document of console_state, keyed by
// profile and entry name.
type Store struct {
	coll    *mongo.Collection
	profile string
	now     func() time.Time
}

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore(db *mongo.Database, profile string) *Store {
	if profile == "" {
		profile = "default"
	}
	return &Store{coll: db.Collection(stateCollection), profile: profile, now: time.Now}
}

type stateDoc struct {
	ID        string `bson:"_id"`
	Profile   string `bson:"profile"`
	Key       string `bson:"key"`
	Value     string `bson:"value"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var doc stateDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": s.id(key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ports.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find %s: %w", key, err)
	}
	return doc.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	doc := stateDoc{
		ID:        s.id(key),
		Profile:   s.profile,
		Key:       key,
		Value:     value,
		UpdatedAt: s.now().Unix(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.id(key)}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

// Close disconnects the underlying client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return s.coll.Database().Client().Disconnect(ctx)
}

func (s *Store) id(key string) string {
	return s.profile + ":" + key
}
