package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const DefaultBatchSize = 500

// Replacer clears a collection and repopulates it with a new record set.
//
// There is no isolation: a reader may observe the collection empty or partially
// filled while Replace runs, and a failure part way leaves it that way. After a
// successful return the collection holds exactly the new records.
type Replacer struct {
	store     DocumentStore
	batchSize int
	log       *zap.Logger
}

func NewReplacer(store DocumentStore, batchSize int, log *zap.Logger) *Replacer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Replacer{store: store, batchSize: batchSize, log: log}
}

// Replace deletes every existing document of collection, then inserts records in
// order. Both phases are committed in sequential chunks of at most batchSize.
func (r *Replacer) Replace(ctx context.Context, collection string, records []Record) (int, error) {
	ids, err := r.store.ListIDs(ctx, collection)
	if err != nil {
		return 0, err
	}

	var deleted int64
	for start := 0; start < len(ids); start += r.batchSize {
		end := min(start+r.batchSize, len(ids))
		n, err := r.store.DeleteByIDs(ctx, collection, ids[start:end])
		if err != nil {
			return 0, fmt.Errorf("replace %s: delete batch at %d: %w", collection, start, err)
		}
		deleted += n
	}

	inserted := 0
	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))
		docs := make([]interface{}, 0, end-start)
		for _, rec := range records[start:end] {
			docs = append(docs, map[string]interface{}(rec))
		}
		if err := r.store.InsertMany(ctx, collection, docs); err != nil {
			return inserted, fmt.Errorf("replace %s: insert batch at %d: %w", collection, start, err)
		}
		inserted += len(docs)
	}

	r.log.Info("collection replaced",
		zap.String("collection", collection),
		zap.Int64("deleted", deleted),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}
