package chat

import (
	"context"

	"board-sync/internal/config"
	"board-sync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ChatRepository interface {
	DeleteAll(ctx context.Context) (int64, error)
}

type ChatRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewChatRepository(mongodb *database.MongodbDB, cfg *config.Config) ChatRepository {
	return &ChatRepositoryImpl{
		Collection: mongodb.DB.Collection(cfg.Notify.ChatCollection),
	}
}

func (r *ChatRepositoryImpl) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.Collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
