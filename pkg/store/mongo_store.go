package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is where MongoStore keeps its documents.
const CollectionName = "kv_store"

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore implements Store with one document per key. Values keep the
// same JSON encoding as RedisStore so backends can be swapped.
type MongoStore struct {
	collection *mongo.Collection
	prefix     string
	hits       atomic.Int64
	misses     atomic.Int64
	writes     atomic.Int64
}

func NewMongoStore(db *mongo.Database, prefix string) *MongoStore {
	return &MongoStore{
		collection: db.Collection(CollectionName),
		prefix:     prefix,
	}
}

func (m *MongoStore) Get(ctx context.Context, key string, dest interface{}) error {
	var doc kvDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": m.buildKey(key)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			m.misses.Add(1)
			return ErrNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(doc.Value), dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	m.hits.Add(1)
	return nil
}

func (m *MongoStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	doc := kvDocument{
		Key:       m.buildKey(key),
		Value:     string(data),
		UpdatedAt: time.Now().UTC(),
	}

	_, err = m.collection.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}

	m.writes.Add(1)
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": m.buildKey(key)}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	m.writes.Add(1)
	return nil
}

func (m *MongoStore) HealthCheck(ctx context.Context) error {
	return m.collection.Database().Client().Ping(ctx, nil)
}

func (m *MongoStore) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
		Writes: m.writes.Load(),
	}
}

func (m *MongoStore) buildKey(key string) string {
	return m.prefix + key
}
