package sync

import (
	"context"
	"fmt"
	gosync "sync"

	"board-sync/internal/common/apperr"
	"board-sync/internal/features/sheets"
)

type storedDoc struct {
	id  int
	doc map[string]interface{}
}

// memStore is an in-memory DocumentStore that records its batch sizes.
type memStore struct {
	mu          gosync.Mutex
	nextID      int
	collections map[string][]storedDoc
	deleteSizes []int
	insertSizes []int
	failInsert  map[string]error
	failList    map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		collections: map[string][]storedDoc{},
		failInsert:  map[string]error{},
		failList:    map[string]error{},
	}
}

func (s *memStore) seed(collection string, n int) {
	for i := 0; i < n; i++ {
		_ = s.InsertMany(context.Background(), collection, []interface{}{map[string]interface{}{"stale": i}})
	}
	s.insertSizes = nil
}

func (s *memStore) ListIDs(_ context.Context, collection string) ([]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failList[collection]; err != nil {
		return nil, err
	}
	ids := make([]interface{}, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		ids = append(ids, d.id)
	}
	return ids, nil
}

func (s *memStore) DeleteByIDs(_ context.Context, collection string, ids []interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSizes = append(s.deleteSizes, len(ids))

	drop := make(map[interface{}]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.collections[collection][:0]
	var n int64
	for _, d := range s.collections[collection] {
		if drop[d.id] {
			n++
			continue
		}
		kept = append(kept, d)
	}
	s.collections[collection] = kept
	return n, nil
}

func (s *memStore) InsertMany(_ context.Context, collection string, docs []interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failInsert[collection]; err != nil {
		return err
	}
	s.insertSizes = append(s.insertSizes, len(docs))
	for _, d := range docs {
		m, ok := d.(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected document type %T", d)
		}
		s.nextID++
		s.collections[collection] = append(s.collections[collection], storedDoc{id: s.nextID, doc: m})
	}
	return nil
}

// docs returns the stored documents without their ids.
func (s *memStore) docs(collection string) []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(s.collections[collection]))
	for _, d := range s.collections[collection] {
		out = append(out, d.doc)
	}
	return out
}

type fakeReader struct {
	mu    gosync.Mutex
	data  map[string][]sheets.RawRow
	fail  map[string]error
	calls int
	gate  chan struct{} // when set, fetches block until it is closed
}

func newFakeReader() *fakeReader {
	return &fakeReader{data: map[string][]sheets.RawRow{}, fail: map[string]error{}}
}

func (r *fakeReader) FetchRange(ctx context.Context, ref sheets.RangeRef) ([]sheets.RawRow, error) {
	r.mu.Lock()
	r.calls++
	gate := r.gate
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := r.fail[ref.Sheet]; err != nil {
		return nil, err
	}
	return r.data[ref.Sheet], nil
}

type fakeBoardName struct {
	names []string
	err   error
}

func (f *fakeBoardName) SetBoardName(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	return nil
}

type fakeRunRepo struct {
	mu   gosync.Mutex
	runs []SyncRun
}

func (r *fakeRunRepo) Create(_ context.Context, run *SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) Update(_ context.Context, run *SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[len(r.runs)-1] = *run
	return nil
}

func (r *fakeRunRepo) List(_ context.Context, limit int64) ([]SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int64(len(r.runs)) < limit {
		limit = int64(len(r.runs))
	}
	return append([]SyncRun(nil), r.runs[:limit]...), nil
}

type heldLease struct{}

func (heldLease) Acquire(context.Context) (func(context.Context) error, error) {
	return nil, apperr.E(apperr.KindConflict, "acquire sync lease", apperr.ErrSyncInProgress)
}
