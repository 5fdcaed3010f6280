package settings

import (
	"context"
	"errors"
	"time"

	"board-sync/internal/config"
	"board-sync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SettingsRepository interface {
	// Get returns nil when the settings document does not exist yet.
	Get(ctx context.Context) (*Settings, error)
	// SetField merges a single field into the settings document, creating it if needed.
	SetField(ctx context.Context, field, value string) error
}

type SettingsRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSettingsRepository(mongodb *database.MongodbDB, cfg *config.Config) SettingsRepository {
	return &SettingsRepositoryImpl{
		Collection: mongodb.DB.Collection(cfg.Notify.SettingsCollection),
	}
}

func (r *SettingsRepositoryImpl) Get(ctx context.Context) (*Settings, error) {
	var settings Settings
	err := r.Collection.FindOne(ctx, bson.M{"_id": GeneralID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *SettingsRepositoryImpl) SetField(ctx context.Context, field, value string) error {
	filter := bson.M{"_id": GeneralID}
	update := bson.M{"$set": bson.M{
		field:       value,
		"updatedAt": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.Collection.UpdateOne(ctx, filter, update, opts)
	return err
}
