package sync

import (
	"context"

	"board-sync/internal/common/apperr"
	"board-sync/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentStore is the slice of the document database the Replacer needs.
type DocumentStore interface {
	ListIDs(ctx context.Context, collection string) ([]interface{}, error)
	DeleteByIDs(ctx context.Context, collection string, ids []interface{}) (int64, error)
	InsertMany(ctx context.Context, collection string, docs []interface{}) error
}

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(mongodb *database.MongodbDB) DocumentStore {
	return &MongoStore{db: mongodb.DB}
}

func (s *MongoStore) ListIDs(ctx context.Context, collection string) ([]interface{}, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mongoErr("list "+collection, err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID interface{} `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mongoErr("list "+collection, err)
	}

	ids := make([]interface{}, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

func (s *MongoStore) DeleteByIDs(ctx context.Context, collection string, ids []interface{}) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, mongoErr("delete "+collection, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	_, err := s.db.Collection(collection).InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return mongoErr("insert "+collection, err)
}

func mongoErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperr.E(apperr.KindUnavailable, op, err)
	}
	return apperr.E(apperr.KindInternal, op, err)
}
