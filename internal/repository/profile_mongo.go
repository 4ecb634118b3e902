package repository

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Proton-105/lanxat-bot/internal/domain"
	errors "github.com/Proton-105/lanxat-bot/internal/errors"
)

const UsersCollection = "users"

// MongoProfileRepository stores one document per user in the users collection.
type MongoProfileRepository struct {
	coll *mongo.Collection
	log  *slog.Logger
}

var _ ProfileRepository = (*MongoProfileRepository)(nil)

func NewMongoProfileRepository(db *mongo.Database, log *slog.Logger) *MongoProfileRepository {
	if log == nil {
		log = slog.Default()
	}

	return &MongoProfileRepository{
		coll: db.Collection(UsersCollection),
		log:  log,
	}
}

func (r *MongoProfileRepository) FindByID(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	var profile domain.UserProfile

	err := r.coll.FindOne(ctx, bson.D{{Key: "userId", Value: userID}}).Decode(&profile)
	if err != nil {
		if stdErrors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.NewProfileNotExistsError(userID)
		}

		r.log.Error("find profile failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, errors.NewDatabaseError(fmt.Errorf("find profile %d: %w", userID, err))
	}

	return &profile, nil
}

// Save upserts by userId, setting every profile field.
func (r *MongoProfileRepository) Save(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil {
		return errors.NewValidationError("profile is nil")
	}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "yandexApiKey", Value: profile.YandexAPIKey},
		{Key: "langFrom", Value: profile.LangFrom},
		{Key: "langTo", Value: profile.LangTo},
		{Key: "langOtherFrom", Value: profile.LangOtherFrom},
		{Key: "langOtherTo", Value: profile.LangOtherTo},
	}}}

	_, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "userId", Value: profile.UserID}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.log.Error("save profile failed", slog.Int64("user_id", profile.UserID), slog.Any("error", err))
		return errors.NewDatabaseError(fmt.Errorf("save profile %d: %w", profile.UserID, err))
	}

	return nil
}
