// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	CollectionUsers       = "users"
	CollectionImages      = "images"
	CollectionPreferences = "preferences"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Name       string
	Keys       bson.D
	Unique     bool
}

func (d IndexDefinition) model() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    d.Keys,
		Options: options.Index().SetName(d.Name).SetUnique(d.Unique),
	}
}

// CreateAllIndexes creates the indexes of every collection. It is idempotent.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	return createIndexes(ctx, db, GetAllIndexDefinitions())
}

// CreateCollectionIndexes creates the indexes of one collection only.
func CreateCollectionIndexes(ctx context.Context, db *mongo.Database, collectionName string) error {
	var indexes []IndexDefinition

	switch collectionName {
	case CollectionUsers:
		indexes = GetUserIndexes()
	case CollectionImages:
		indexes = GetImageIndexes()
	case CollectionPreferences:
		indexes = GetPreferenceIndexes()
	default:
		return fmt.Errorf("unknown collection: %s", collectionName)
	}

	return createIndexes(ctx, db, indexes)
}

func createIndexes(ctx context.Context, db *mongo.Database, indexes []IndexDefinition) error {
	for _, idx := range indexes {
		_, err := db.Collection(idx.Collection).Indexes().CreateOne(ctx, idx.model())
		if err != nil {
			return fmt.Errorf("failed to create index %s on collection %s: %w", idx.Name, idx.Collection, err)
		}
	}
	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition

	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetImageIndexes()...)
	indexes = append(indexes, GetPreferenceIndexes()...)

	return indexes
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionUsers,
			Name:       "idx_users_id_unique",
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Unique:     true,
		},
		{
			Collection: CollectionUsers,
			Name:       "idx_users_username_unique",
			Keys:       bson.D{{Key: "username", Value: 1}},
			Unique:     true,
		},
		{
			// Admin list ordering
			Collection: CollectionUsers,
			Name:       "idx_users_created",
			Keys:       bson.D{{Key: "created_at", Value: 1}},
		},
	}
}

// GetImageIndexes returns index definitions for the images collection.
func GetImageIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionImages,
			Name:       "idx_images_id_unique",
			Keys:       bson.D{{Key: "image_id", Value: 1}},
			Unique:     true,
		},
		{
			// Per-user listing, newest first. Also serves the distinct owner scan.
			Collection: CollectionImages,
			Name:       "idx_images_owner_created",
			Keys:       bson.D{{Key: "user_id", Value: 1}, {Key: "created", Value: -1}},
		},
	}
}

// GetPreferenceIndexes returns index definitions for the preferences collection.
func GetPreferenceIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			Collection: CollectionPreferences,
			Name:       "idx_preferences_key_unique",
			Keys:       bson.D{{Key: "key", Value: 1}},
			Unique:     true,
		},
	}
}
