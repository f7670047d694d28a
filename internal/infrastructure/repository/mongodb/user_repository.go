package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/lllypuk/imghost/internal/domain/errs"
	userdomain "github.com/lllypuk/imghost/internal/domain/user"
	"github.com/lllypuk/imghost/internal/domain/uuid"
)

// MongoUserRepository implements the user repository of the application layer
type MongoUserRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// UserRepoOption configures MongoUserRepository.
type UserRepoOption func(*MongoUserRepository)

// WithUserRepoLogger sets the logger for user repository.
func WithUserRepoLogger(logger *slog.Logger) UserRepoOption {
	return func(r *MongoUserRepository) {
		r.logger = logger
	}
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(collection *mongo.Collection, opts ...UserRepoOption) *MongoUserRepository {
	r := &MongoUserRepository{
		collection: collection,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// FindByID finds a user by id
func (r *MongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userdomain.User, error) {
	if id.IsZero() {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": id.String()}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.ErrorContext(ctx, "failed to find user by ID",
				slog.String("user_id", id.String()),
				slog.String("error", err.Error()),
			)
		}
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// FindByUsername finds a user by username
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	if username == "" {
		return nil, errs.ErrInvalidInput
	}

	filter := bson.M{"username": username}
	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		return nil, HandleMongoError(err, "user")
	}

	return r.documentToUser(&doc)
}

// Exists checks whether a user with the id is stored
func (r *MongoUserRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID.IsZero() {
		return false, errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": userID.String()}
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, HandleMongoError(err, "user")
	}

	return count > 0, nil
}

// Save upserts the user. A username taken by another user yields errs.ErrAlreadyExists.
func (r *MongoUserRepository) Save(ctx context.Context, user *userdomain.User) error {
	if user == nil || user.ID().IsZero() {
		return errs.ErrInvalidInput
	}

	doc := r.userToDocument(user)
	filter := bson.M{"user_id": user.ID().String()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, UpsertOptions())
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		r.logger.ErrorContext(ctx, "failed to save user",
			slog.String("user_id", user.ID().String()),
			slog.String("username", user.Username()),
			slog.String("error", err.Error()),
		)
	}
	return HandleMongoError(err, "user")
}

// Delete removes the user
func (r *MongoUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if id.IsZero() {
		return errs.ErrInvalidInput
	}

	filter := bson.M{"user_id": id.String()}
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to delete user",
			slog.String("user_id", id.String()),
			slog.String("error", err.Error()),
		)
		return HandleMongoError(err, "user")
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// List returns users ordered by creation time, oldest first
func (r *MongoUserRepository) List(ctx context.Context, offset, limit int) ([]*userdomain.User, error) {
	limit = DefaultLimitWithMax(limit, DefaultPaginationLimit, MaxPaginationLimit)
	opts := FindWithPagination(offset, limit, "created_at", SortAsc)
	return listDocuments(ctx, r.collection, bson.M{}, opts, r.documentToUser, r.logger, "users")
}

// Count returns the number of users
func (r *MongoUserRepository) Count(ctx context.Context) (int, error) {
	count, err := CountFilter(ctx, r.collection, bson.M{})
	if err != nil {
		return 0, HandleMongoError(err, "users")
	}
	return count, nil
}

// userDocument is the stored form of a user
type userDocument struct {
	UserID    string    `bson:"user_id"`
	Username  string    `bson:"username"`
	Roles     []string  `bson:"roles"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *MongoUserRepository) userToDocument(user *userdomain.User) userDocument {
	roles := make([]string, 0, len(user.Roles()))
	for _, role := range user.Roles() {
		roles = append(roles, string(role))
	}

	return userDocument{
		UserID:    user.ID().String(),
		Username:  user.Username(),
		Roles:     roles,
		CreatedAt: user.CreatedAt().UTC(),
		UpdatedAt: user.UpdatedAt().UTC(),
	}
}

func (r *MongoUserRepository) documentToUser(doc *userDocument) (*userdomain.User, error) {
	if doc == nil {
		return nil, errs.ErrInvalidInput
	}

	id, err := uuid.ParseUUID(doc.UserID)
	if err != nil {
		return nil, errs.ErrInvalidInput
	}

	roles := make([]userdomain.Role, 0, len(doc.Roles))
	for _, raw := range doc.Roles {
		roles = append(roles, userdomain.Role(raw))
	}

	return userdomain.Reconstruct(id, doc.Username, roles, doc.CreatedAt, doc.UpdatedAt), nil
}
