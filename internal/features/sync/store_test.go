package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"board-sync/internal/common/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list returns every id", func(mt *mtest.T) {
		store := &MongoStore{db: mt.DB}
		ns := mt.DB.Name() + ".notices"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int32(1)}},
			bson.D{{Key: "_id", Value: "legacy"}},
		))

		ids, err := store.ListIDs(context.Background(), "notices")
		require.NoError(mt, err)
		assert.Equal(mt, []interface{}{int32(1), "legacy"}, ids)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "notices", cmd.Lookup("find").StringValue())
		assert.EqualValues(mt, 1, cmd.Lookup("projection", "_id").AsInt64())
	})

	mt.Run("list failure is internal", func(mt *mtest.T) {
		store := &MongoStore{db: mt.DB}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Message: "not authorized on board to execute command",
			Name:    "Unauthorized",
		}))

		_, err := store.ListIDs(context.Background(), "notices")
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindInternal, apperr.KindOf(err))
		assert.Contains(mt, err.Error(), "list notices")
	})

	mt.Run("delete targets the given ids", func(mt *mtest.T) {
		store := &MongoStore{db: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		n, err := store.DeleteByIDs(context.Background(), "schedules", []interface{}{"a", "b"})
		require.NoError(mt, err)
		assert.EqualValues(mt, 2, n)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "schedules", cmd.Lookup("delete").StringValue())
		in := cmd.Lookup("deletes", "0", "q", "_id", "$in").Array()
		values, err := in.Values()
		require.NoError(mt, err)
		require.Len(mt, values, 2)
		assert.Equal(mt, "a", values[0].StringValue())
		assert.Equal(mt, "b", values[1].StringValue())
	})

	mt.Run("insert is ordered", func(mt *mtest.T) {
		store := &MongoStore{db: mt.DB}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		docs := []interface{}{bson.M{"order": 1}, bson.M{"order": 2}}
		require.NoError(mt, store.InsertMany(context.Background(), "notices", docs))

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "notices", cmd.Lookup("insert").StringValue())
		assert.True(mt, cmd.Lookup("ordered").Boolean())
	})

	mt.Run("insert write error is internal", func(mt *mtest.T) {
		store := &MongoStore{db: mt.DB}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		err := store.InsertMany(context.Background(), "notices", []interface{}{bson.M{"order": 1}, bson.M{"order": 1}})
		require.Error(mt, err)
		assert.Equal(mt, apperr.KindInternal, apperr.KindOf(err))
		assert.False(mt, apperr.Retryable(err))
	})
}

func TestMongoErrClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind apperr.Kind
	}{
		{"network", mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}}, apperr.KindUnavailable},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), apperr.KindUnavailable},
		{"max time expired", mongo.CommandError{Code: 50, Name: "MaxTimeMSExpired"}, apperr.KindUnavailable},
		{"write exception", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "validation failed"}}}, apperr.KindInternal},
		{"plain", errors.New("boom"), apperr.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mongoErr("insert notices", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Equal(t, tt.wantKind == apperr.KindUnavailable, apperr.Retryable(err))
			assert.Contains(t, err.Error(), "insert notices")
		})
	}

	assert.NoError(t, mongoErr("insert notices", nil))
}
