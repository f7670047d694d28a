// Package mongodb implements the repositories on top of MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/imghost/internal/domain/errs"
)

const (
	// DefaultPaginationLimit is applied when a query asks for no limit.
	DefaultPaginationLimit = 50

	// MaxPaginationLimit caps the page size of a single query.
	MaxPaginationLimit = 100
)

// Sort orders accepted by FindWithPagination.
const (
	SortAsc  = 1
	SortDesc = -1
)

// HandleMongoError converts a driver error to a domain error:
//   - nil if err == nil
//   - errs.ErrNotFound if no document matched
//   - errs.ErrAlreadyExists on a unique index violation
//   - a wrapped error otherwise
func HandleMongoError(err error, resourceType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return errs.ErrNotFound
	}

	if mongo.IsDuplicateKeyError(err) {
		return errs.ErrAlreadyExists
	}

	return fmt.Errorf("failed to operate on %s: %w", resourceType, err)
}

// UpsertOptions returns the options of an upserting UpdateOne.
func UpsertOptions() *options.UpdateOneOptionsBuilder {
	return options.UpdateOne().SetUpsert(true)
}

// FindWithPagination returns find options with skip, limit and a single sort key.
// A tie breaker on _id keeps pages stable when sort values repeat.
func FindWithPagination(offset, limit int, sortField string, sortOrder int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortOrder}, {Key: "_id", Value: sortOrder}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))
}

// CountFilter counts the documents matching filter.
func CountFilter(ctx context.Context, coll *mongo.Collection, filter bson.M) (int, error) {
	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// DefaultLimitWithMax returns defaultLimit for limit <= 0 and caps limit at maxLimit.
func DefaultLimitWithMax(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
