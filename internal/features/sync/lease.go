package sync

import (
	"context"
	"time"

	"board-sync/internal/common/apperr"
	"board-sync/internal/database"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Lease serializes sync runs across processes sharing one database.
type Lease interface {
	Acquire(ctx context.Context) (release func(context.Context) error, err error)
}

const leaseName = "sheet-sync"

// MongoLease stores a single lease document. An expired lease is taken over, so a
// crashed holder blocks other runs for at most ttl.
type MongoLease struct {
	collection *mongo.Collection
	ttl        time.Duration
	now        func() time.Time
}

func NewMongoLease(mongodb *database.MongodbDB, collection string, ttl time.Duration) *MongoLease {
	return &MongoLease{
		collection: mongodb.DB.Collection(collection),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (l *MongoLease) Acquire(ctx context.Context) (func(context.Context) error, error) {
	holder := uuid.NewString()
	now := l.now().UTC()

	filter := bson.M{"_id": leaseName, "expires_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{
		"holder":      holder,
		"acquired_at": now,
		"expires_at":  now.Add(l.ttl),
	}}
	_, err := l.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperr.E(apperr.KindConflict, "acquire sync lease", apperr.ErrSyncInProgress)
		}
		return nil, mongoErr("acquire sync lease", err)
	}

	release := func(ctx context.Context) error {
		_, err := l.collection.DeleteOne(ctx, bson.M{"_id": leaseName, "holder": holder})
		return mongoErr("release sync lease", err)
	}
	return release, nil
}

// noLease is used when no database lease is configured (tests, single-process CLI).
type noLease struct{}

func (noLease) Acquire(context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
