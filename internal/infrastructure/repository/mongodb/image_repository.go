package mongodb

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/imghost/internal/domain/errs"
	imagedomain "github.com/lllypuk/imghost/internal/domain/image"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// MongoImageRepository stores image metadata. The delete key is written on
// save and only read back by FindByIDWithKey.
type MongoImageRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// ImageRepoOption configures MongoImageRepository.
type ImageRepoOption func(*MongoImageRepository)

// WithImageRepoLogger sets the logger for image repository.
func WithImageRepoLogger(logger *slog.Logger) ImageRepoOption {
	return func(r *MongoImageRepository) {
		r.logger = logger
	}
}

// NewMongoImageRepository creates a new MongoDB image repository
func NewMongoImageRepository(collection *mongo.Collection, opts ...ImageRepoOption) *MongoImageRepository {
	r := &MongoImageRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

var withoutDeleteKey = bson.M{"delete_key": 0}

// FindByID finds an image by id without its delete key
func (r *MongoImageRepository) FindByID(ctx context.Context, id uuid.UUID) (*imagedomain.Image, error) {
	return r.findOne(ctx, id, options.FindOne().SetProjection(withoutDeleteKey))
}

// FindByIDWithKey finds an image by id including its delete key
func (r *MongoImageRepository) FindByIDWithKey(ctx context.Context, id uuid.UUID) (*imagedomain.Image, error) {
	return r.findOne(ctx, id, options.FindOne())
}

func (r *MongoImageRepository) findOne(
	ctx context.Context,
	id uuid.UUID,
	opts *options.FindOneOptionsBuilder,
) (*imagedomain.Image, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	var doc imageDocument
	if err := r.collection.FindOne(ctx, bson.M{"image_id": id.String()}, opts).Decode(&doc); err != nil {
		return nil, HandleMongoError(err, "image")
	}

	return documentToImage(&doc)
}

// List returns images newest first. A zero userID lists the images of every user.
func (r *MongoImageRepository) List(
	ctx context.Context,
	userID uuid.UUID,
	offset, limit int,
) ([]*imagedomain.Image, error) {
	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPagination(offset, limit, "created", SortDesc).SetProjection(withoutDeleteKey)

	return listDocuments(ctx, r.collection, ownerFilter(userID), opts, documentToImage, r.logger, "images")
}

// Count returns the number of images owned by a user, or of all images for a zero userID
func (r *MongoImageRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := CountFilter(ctx, r.collection, ownerFilter(userID))
	if err != nil {
		return 0, HandleMongoError(err, "images")
	}
	return count, nil
}

// DistinctOwners returns the ids of all users owning at least one image
func (r *MongoImageRepository) DistinctOwners(ctx context.Context) ([]uuid.UUID, error) {
	result := r.collection.Distinct(ctx, "user_id", bson.M{})
	if err := result.Err(); err != nil {
		return nil, HandleMongoError(err, "images")
	}

	var raw []string
	if err := result.Decode(&raw); err != nil {
		return nil, HandleMongoError(err, "images")
	}

	owners := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.ParseUUID(s)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping invalid image owner",
				slog.String("user_id", s),
				slog.String("error", err.Error()),
			)
			continue
		}
		owners = append(owners, id)
	}

	return owners, nil
}

// Save upserts the image metadata
func (r *MongoImageRepository) Save(ctx context.Context, img *imagedomain.Image) error {
	if img == nil || img.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := imageDocument{
		ImageID:   img.ID().String(),
		UserID:    img.UserID().String(),
		Created:   img.Created().UTC(),
		FileName:  img.FileName(),
		DeleteKey: img.DeleteKey(),
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"image_id": doc.ImageID}, bson.M{"$set": doc}, UpsertOptions())
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save image",
			slog.String("image_id", doc.ImageID),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "image")
}

// Delete removes one image
func (r *MongoImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"image_id": id.String()})
	if err != nil {
		return HandleMongoError(err, "image")
	}
	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteByOwner removes every image of a user
func (r *MongoImageRepository) DeleteByOwner(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID.IsZero() {
		return 0, errs.ErrInvalidInput
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to delete images of owner",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return 0, HandleMongoError(err, "images")
	}

	return int(result.DeletedCount), nil
}

func ownerFilter(userID uuid.UUID) bson.M {
	if userID.IsZero() {
		return bson.M{}
	}
	return bson.M{"user_id": userID.String()}
}

type imageDocument struct {
	ImageID   string    `bson:"image_id"`
	UserID    string    `bson:"user_id"`
	Created   time.Time `bson:"created"`
	FileName  string    `bson:"file_name"`
	DeleteKey string    `bson:"delete_key,omitempty"`
}

func documentToImage(doc *imageDocument) (*imagedomain.Image, error) {
	id, err := uuid.ParseUUID(doc.ImageID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}
	userID, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	return imagedomain.Reconstruct(id, userID, doc.Created, doc.FileName, doc.DeleteKey), nil
}
