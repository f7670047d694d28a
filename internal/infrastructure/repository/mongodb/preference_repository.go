package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// MongoPreferenceRepository stores raw preference values keyed by preference key.
type MongoPreferenceRepository struct {
	collection *mongo.Collection
}

// NewMongoPreferenceRepository creates a new MongoDB preference repository
func NewMongoPreferenceRepository(collection *mongo.Collection) *MongoPreferenceRepository {
	return &MongoPreferenceRepository{collection: collection}
}

type preferenceDocument struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// FindAll returns every stored value
func (r *MongoPreferenceRepository) FindAll(ctx context.Context) (map[string]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, HandleMongoError(err, "preferences")
	}
	defer cursor.Close(ctx)

	var docs []preferenceDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}

	values := make(map[string]string, len(docs))
	for _, doc := range docs {
		values[doc.Key] = doc.Value
	}
	return values, nil
}

// Find returns the stored value of key
func (r *MongoPreferenceRepository) Find(ctx context.Context, key string) (string, error) {
	var doc preferenceDocument
	if err := r.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc); err != nil {
		return "", HandleMongoError(err, "preference")
	}
	return doc.Value, nil
}

// Save upserts the value of key
func (r *MongoPreferenceRepository) Save(ctx context.Context, key, raw string) error {
	doc := preferenceDocument{Key: key, Value: raw, UpdatedAt: time.Now().UTC()}
	_, err := r.collection.UpdateOne(ctx, bson.M{"key": key}, bson.M{"$set": doc}, UpsertOptions())
	return HandleMongoError(err, "preference")
}
