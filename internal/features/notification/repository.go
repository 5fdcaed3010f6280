package notification

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

// OutboxRepository removes delivered attendance mails.
type OutboxRepository interface {
	Delete(ctx context.Context, id interface{}) error
}

type OutboxRepositoryImpl struct {
	collection *mongo.Collection
}

func NewOutboxRepository(mongodb *database.MongodbDB, cfg *config.Config) OutboxRepository {
	return &OutboxRepositoryImpl{
		collection: mongodb.DB.Collection(cfg.Notify.MailCollection),
	}
}

func (r *OutboxRepositoryImpl) Delete(ctx context.Context, id interface{}) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// TokenStore keeps the last change stream resume token per watched collection, so a
// restarted watcher continues where the previous process stopped.
type TokenStore interface {
	Load(ctx context.Context, name string) (bson.Raw, error)
	Save(ctx context.Context, name string, token bson.Raw) error
	Clear(ctx context.Context, name string) error
}

type tokenRecord struct {
	Name      string    `bson:"_id"`
	Token     bson.Raw  `bson:"token"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type TokenStoreImpl struct {
	collection *mongo.Collection
}

func NewTokenStore(mongodb *database.MongodbDB, cfg *config.Config) TokenStore {
	return &TokenStoreImpl{
		collection: mongodb.DB.Collection(cfg.Notify.TokenCollection),
	}
}

// Load returns nil when no token was saved for name.
func (s *TokenStoreImpl) Load(ctx context.Context, name string) (bson.Raw, error) {
	var rec tokenRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Token, nil
}

func (s *TokenStoreImpl) Save(ctx context.Context, name string, token bson.Raw) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"token": token, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *TokenStoreImpl) Clear(ctx context.Context, name string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": name})
	return err
}
