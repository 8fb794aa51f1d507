package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coindash-api/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound indicates the durable tier holds no entry for the key
var ErrNotFound = errors.New("cache entry not found")

// DurableEntry is one record of the durable tier
type DurableEntry struct {
	Value     []byte
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Fresh reports whether the entry is still within its TTL
func (e *DurableEntry) Fresh() bool {
	return time.Now().Before(e.ExpiresAt)
}

// Durable is the second cache tier. It outlives process restarts; a failure
// of this tier is treated as a cache miss, never as a request failure.
type Durable interface {
	Get(ctx context.Context, key string) (*DurableEntry, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Ping(ctx context.Context) error
}

// mongoDocument is the BSON shape of one cached entry
type mongoDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	StoredAt  time.Time `bson:"stored_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore implements Durable on a MongoDB collection
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection
func NewMongoStore(ctx context.Context, cfg *config.MongoConfig) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get implements Durable
func (s *MongoStore) Get(ctx context.Context, key string) (*DurableEntry, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("durable cache lookup failed: %w", err)
	}

	return &DurableEntry{
		Value:     doc.Value,
		StoredAt:  doc.StoredAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

// Set implements Durable
func (s *MongoStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := time.Now()
	doc := mongoDocument{
		Key:       key,
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("durable cache write failed: %w", err)
	}
	return nil
}

// Ping implements Durable
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
