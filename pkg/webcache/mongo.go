package webcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists cached responses in a MongoDB collection. A TTL index
// on the expiry field reclaims stale documents in the background; reads
// filter on the expiry field as well because the TTL sweep only runs
// periodically.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// NewMongoStore connects to the MongoDB deployment at uri and prepares the
// named collection for cache use.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Get returns the entry stored under key.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	filter := bson.M{"_id": key, "expires_at": bson.M{"$gt": time.Now().UTC()}}
	var entry mongoEntry
	err := s.coll.FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find response: %w", err)
	}
	return entry.Data, true, nil
}

// Set stores data under key for ttl, replacing any previous entry.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := mongoEntry{
		Key:       key,
		Data:      data,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store response: %w", err)
	}
	return nil
}

// Delete removes the entry stored under key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	return nil
}

// Close disconnects from the deployment.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}
