package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vibeflow/vibeflow/domain/repositories"
)

// DefaultCollection holds the client preferences and history
const DefaultCollection = "preferences"

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KeyValueStore implements repositories.KeyValueStore on one collection,
// one document per key.
type KeyValueStore struct {
	collection *mongo.Collection
}

// NewKeyValueStore creates a store on the named collection
func NewKeyValueStore(db *mongo.Database, collection string) *KeyValueStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &KeyValueStore{collection: db.Collection(collection)}
}

// Get implements repositories.KeyValueStore
func (s *KeyValueStore) Get(ctx context.Context, key string) (string, error) {
	var doc kvDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", repositories.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return doc.Value, nil
}

// Set implements repositories.KeyValueStore
func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now()}}
	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Delete implements repositories.KeyValueStore
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear implements repositories.KeyValueStore
func (s *KeyValueStore) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}
