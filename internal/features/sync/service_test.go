package sync

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"board-sync/internal/common/apperr"
	"board-sync/internal/config"
	"board-sync/internal/features/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type harness struct {
	reader  *fakeReader
	store   *memStore
	board   *fakeBoardName
	runs    *fakeRunRepo
	service *SyncServiceImpl
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{}
	cfg.Sheets.SpreadsheetID = "sheet-1"
	cfg.Sync.Tables = config.DefaultTables()
	cfg.Sync.BoardNameTable = "adminNotes"

	opts, err := BuildOptions(cfg)
	require.NoError(t, err)

	h := &harness{
		reader: newFakeReader(),
		store:  newMemStore(),
		board:  &fakeBoardName{},
		runs:   &fakeRunRepo{},
	}
	h.service = NewSyncService(opts, h.reader, NewReplacer(h.store, 2, zap.NewNop()), h.board, h.runs, nil, zap.NewNop()).(*SyncServiceImpl)

	h.reader.data["Notices"] = []sheets.RawRow{
		{"1", "Welcome", "https://drive.google.com/file/d/ABC123/view"},
		{"2", "", ""},
	}
	h.reader.data["Schedules"] = []sheets.RawRow{
		{"3/2", "Opening ceremony"},
		{"3/5", "Field trip", "https://drive.google.com/open?id=S1"},
		{"3/9", "Exam"},
	}
	h.reader.data["Admin"] = []sheets.RawRow{
		{"Class 3-A"},
		{"Bring gym clothes"},
		{},
		{"", "https://drive.google.com/file/d/IMG/view"},
	}
	return h
}

func TestSyncScenario(t *testing.T) {
	h := newHarness(t)
	h.store.seed("notices", 5)

	result, err := h.service.Sync(context.Background(), "test")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, map[string]int{"notices": 2, "schedules": 3, "adminNotes": 2}, result.Counts)

	assert.Equal(t, []map[string]interface{}{
		{"pageNumber": "1", "content": "Welcome", "imageUrl": "https://drive.google.com/uc?export=view&id=ABC123", "order": 0},
		{"pageNumber": "2", "content": "", "imageUrl": "", "order": 1},
	}, h.store.docs("notices"))

	admin := h.store.docs("adminNotes")
	require.Len(t, admin, 2)
	assert.Equal(t, 1, admin[1]["order"])

	assert.Equal(t, []string{"Class 3-A"}, h.board.names)

	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, StatusSuccess, h.runs.runs[0].Status)
	assert.Equal(t, "test", h.runs.runs[0].Trigger)
	assert.False(t, h.runs.runs[0].EndTime.IsZero())
}

func TestSyncIsIdempotent(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Sync(context.Background(), "test")
	require.NoError(t, err)
	first := map[string][]map[string]interface{}{}
	for _, table := range h.service.Options.Tables {
		first[table.Collection] = h.store.docs(table.Collection)
	}

	_, err = h.service.Sync(context.Background(), "test")
	require.NoError(t, err)
	for _, table := range h.service.Options.Tables {
		assert.Equal(t, first[table.Collection], h.store.docs(table.Collection), table.Collection)
	}
}

func TestSyncFetchFailureChangesNothing(t *testing.T) {
	h := newHarness(t)
	h.store.seed("notices", 3)
	h.reader.fail["Schedules"] = apperr.E(apperr.KindUnavailable, "fetch Schedules!A2:C", errors.New("503"))

	result, err := h.service.Sync(context.Background(), "test")
	require.Error(t, err)
	assert.True(t, apperr.Retryable(err))
	assert.Equal(t, StatusFailure, result.Status)

	assert.Len(t, h.store.docs("notices"), 3)
	assert.Nil(t, h.store.deleteSizes)
	assert.Empty(t, h.board.names)

	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, StatusFailure, h.runs.runs[0].Status)
	assert.Equal(t, string(apperr.KindUnavailable), h.runs.runs[0].ErrorKind)
}

func TestSyncStopsAtFirstFailedTable(t *testing.T) {
	h := newHarness(t)
	h.store.failInsert["schedules"] = errors.New("disk full")

	result, err := h.service.Sync(context.Background(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync table schedules")

	// notices was replaced before the failure and stays replaced
	assert.Len(t, h.store.docs("notices"), 2)
	assert.Empty(t, h.store.docs("adminNotes"))
	assert.Equal(t, map[string]int{"notices": 2}, result.Counts)
	assert.Empty(t, h.board.names)
}

func TestSyncBlankBoardNameIsNotWritten(t *testing.T) {
	h := newHarness(t)
	h.reader.data["Admin"] = []sheets.RawRow{{""}, {"note"}}

	_, err := h.service.Sync(context.Background(), "test")
	require.NoError(t, err)
	assert.Empty(t, h.board.names)
}

func TestSyncBoardNameFailure(t *testing.T) {
	h := newHarness(t)
	h.board.err = errors.New("settings unavailable")

	_, err := h.service.Sync(context.Background(), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update board name")
}

func TestSyncLeaseHeld(t *testing.T) {
	h := newHarness(t)
	h.service.Lease = heldLease{}

	_, err := h.service.Sync(context.Background(), "test")
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.ErrorIs(t, err, apperr.ErrSyncInProgress)
	assert.Zero(t, h.reader.calls)
	assert.Empty(t, h.runs.runs)
}

func TestConcurrentSyncCallsShareOneRun(t *testing.T) {
	h := newHarness(t)
	h.reader.gate = make(chan struct{})

	const callers = 4
	var wg gosync.WaitGroup
	results := make([]*SyncResult, callers)
	for i := 0; i < callers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := h.service.Sync(context.Background(), "test")
			assert.NoError(t, err)
			results[i] = res
		}()
	}

	// Let every caller reach the in-flight run before fetches complete.
	time.Sleep(100 * time.Millisecond)
	close(h.reader.gate)
	wg.Wait()

	assert.Len(t, h.runs.runs, 1)
	for _, res := range results {
		assert.Same(t, results[0], res)
	}
}

func TestSyncIgnoresCallerCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.service.Sync(ctx, "test")
	require.NoError(t, err)
	assert.Len(t, h.store.docs("notices"), 2)
}

func TestBuildOptionsErrors(t *testing.T) {
	cfg := &config.Config{}
	_, err := BuildOptions(cfg)
	assert.Error(t, err)

	cfg.Sync.Tables = []config.TableConfig{{Name: "x", Range: "bad", Collection: "x", Layout: "notices"}}
	_, err = BuildOptions(cfg)
	assert.Error(t, err)

	cfg.Sync.Tables = []config.TableConfig{{Name: "x", Range: "S!A1:B", Collection: "x", Layout: "nope"}}
	_, err = BuildOptions(cfg)
	assert.Error(t, err)
}

func TestSyncResultJSON(t *testing.T) {
	data, err := SyncResult{Status: StatusSuccess, Counts: map[string]int{"notices": 2, "adminNotes": 0}}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"success","noticesCount":2,"adminNotesCount":0}`, string(data))
}
