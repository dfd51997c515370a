package repositories_mongo

import (
	"context"
	"time"

	"github.com/solstice-ai/artemis-connectors/internal/domain/entities"
	"github.com/solstice-ai/artemis-connectors/internal/domain/errs"
	"github.com/solstice-ai/artemis-connectors/internal/domain/repositories"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ProfileRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewProfileRepository(collection *mongo.Collection, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{
		collection: collection,
		logger:     logger,
	}
}

func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]*entities.ConnectionProfile, error) {
	var profiles []*entities.ConnectionProfile
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, errs.InternalErrorf("failed to list profiles: %v", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var profile entities.ConnectionProfile
		if err := cursor.Decode(&profile); err != nil {
			return nil, errs.InternalErrorf("failed to decode profile: %v", err)
		}
		profiles = append(profiles, &profile)
	}

	if err := cursor.Err(); err != nil {
		return nil, errs.InternalErrorf("failed to list profiles: %v", err)
	}

	return profiles, nil
}

func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*entities.ConnectionProfile, error) {
	var profile entities.ConnectionProfile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundErrorf("profile not found: %s", id)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to get profile: %v", err)
	}

	return &profile, nil
}

func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, profile)
	if mongo.IsDuplicateKeyError(err) {
		return errs.DuplicateErrorf("profile already exists: %s", profile.ID)
	}
	if err != nil {
		return errs.InternalErrorf("failed to create profile: %v", err)
	}

	return nil
}

func (r *ProfileRepository) UpdateProfile(ctx context.Context, profile *entities.ConnectionProfile) error {
	profile.UpdatedAt = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": profile.ID}, bson.M{"$set": profile})
	if err != nil {
		return errs.InternalErrorf("failed to update profile: %v", err)
	}
	if result.MatchedCount == 0 {
		return errs.NotFoundErrorf("profile not found: %s", profile.ID)
	}

	return nil
}

func (r *ProfileRepository) DeleteProfile(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.InternalErrorf("failed to delete profile: %v", err)
	}
	if result.DeletedCount == 0 {
		return errs.NotFoundErrorf("profile not found: %s", id)
	}

	return nil
}

var _ repositories.ProfileRepository = (*ProfileRepository)(nil)
