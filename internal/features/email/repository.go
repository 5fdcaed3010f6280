package email

import (
	"context"
	"time"

	"board-sync/internal/config"
	"board-sync/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type FailureRepository interface {
	Record(ctx context.Context, failure *Failure) error
}

type FailureRepositoryImpl struct {
	col *mongo.Collection
}

func NewFailureRepository(db *database.MongodbDB, cfg *config.Config) FailureRepository {
	return &FailureRepositoryImpl{
		col: db.DB.Collection(cfg.Notify.FailureCollection),
	}
}

func (r *FailureRepositoryImpl) Record(ctx context.Context, failure *Failure) error {
	if failure.FailedAt.IsZero() {
		failure.FailedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, failure)
	return err
}
