package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"board-sync/internal/common/apperr"
	"board-sync/internal/config"
	"board-sync/internal/features/sheets"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type SyncService interface {
	// Sync runs one full replace of every configured table. Concurrent callers in
	// the same process share the in-flight run.
	Sync(ctx context.Context, trigger string) (*SyncResult, error)
	ListRuns(ctx context.Context, limit int64) ([]SyncRun, error)
}

// BoardNameWriter receives the display name read from the header of the board-name table.
type BoardNameWriter interface {
	SetBoardName(ctx context.Context, name string) error
}

// Options is the static description of what a sync run reads and writes.
type Options struct {
	SpreadsheetID  string
	Tables         []TableSpec
	BoardNameTable string
}

// BuildOptions resolves the configured tables into TableSpecs.
func BuildOptions(cfg *config.Config) (Options, error) {
	tables := make([]TableSpec, 0, len(cfg.Sync.Tables))
	for _, t := range cfg.Sync.Tables {
		ref, err := sheets.ParseRange(t.Range)
		if err != nil {
			return Options{}, fmt.Errorf("table %s: %w", t.Name, err)
		}
		mapping, err := LookupLayout(t.Layout)
		if err != nil {
			return Options{}, fmt.Errorf("table %s: %w", t.Name, err)
		}
		tables = append(tables, TableSpec{
			Name:       t.Name,
			Range:      ref,
			Collection: t.Collection,
			Mapping:    mapping,
		})
	}
	if len(tables) == 0 {
		return Options{}, errors.New("no sync tables configured")
	}

	return Options{
		SpreadsheetID:  cfg.Sheets.SpreadsheetID,
		Tables:         tables,
		BoardNameTable: cfg.Sync.BoardNameTable,
	}, nil
}

type SyncServiceImpl struct {
	Options   Options
	Reader    sheets.Reader
	Replacer  *Replacer
	BoardName BoardNameWriter
	RunRepo   SyncRunRepository
	Lease     Lease
	Log       *zap.Logger

	flight singleflight.Group
}

func NewSyncService(
	opts Options,
	reader sheets.Reader,
	replacer *Replacer,
	boardName BoardNameWriter,
	runRepo SyncRunRepository,
	lease Lease,
	log *zap.Logger,
) SyncService {
	if lease == nil {
		lease = noLease{}
	}
	return &SyncServiceImpl{
		Options:   opts,
		Reader:    reader,
		Replacer:  replacer,
		BoardName: boardName,
		RunRepo:   runRepo,
		Lease:     lease,
		Log:       log,
	}
}

func (s *SyncServiceImpl) ListRuns(ctx context.Context, limit int64) ([]SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.RunRepo.List(ctx, limit)
}

func (s *SyncServiceImpl) Sync(ctx context.Context, trigger string) (*SyncResult, error) {
	// A started run is never cancelled by its caller going away.
	runCtx := context.WithoutCancel(ctx)

	v, err, shared := s.flight.Do("sync", func() (interface{}, error) {
		return s.run(runCtx, trigger)
	})
	if shared {
		s.Log.Debug("joined in-flight sync run", zap.String("trigger", trigger))
	}
	result, _ := v.(*SyncResult)
	return result, err
}

func (s *SyncServiceImpl) run(ctx context.Context, trigger string) (*SyncResult, error) {
	release, err := s.Lease.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(ctx); err != nil {
			s.Log.Warn("failed to release sync lease", zap.Error(err))
		}
	}()

	run := &SyncRun{
		Trigger:   trigger,
		StartTime: time.Now(),
		Status:    StatusInProgress,
		Counts:    map[string]int{},
	}
	if err := s.RunRepo.Create(ctx, run); err != nil {
		s.Log.Warn("failed to record sync run", zap.Error(err))
	}

	result := &SyncResult{Status: StatusSuccess, Counts: run.Counts}
	syncErr := s.execute(ctx, result.Counts)

	run.EndTime = time.Now()
	run.Status = StatusSuccess
	if syncErr != nil {
		run.Status = StatusFailure
		run.Error = syncErr.Error()
		run.ErrorKind = string(apperr.KindOf(syncErr))
		result.Status = StatusFailure
		result.Message = syncErr.Error()
	}
	if err := s.RunRepo.Update(ctx, run); err != nil {
		s.Log.Warn("failed to update sync run", zap.Error(err))
	}

	if syncErr != nil {
		s.Log.Error("sync failed",
			zap.String("trigger", trigger),
			zap.String("kind", run.ErrorKind),
			zap.Any("counts", result.Counts),
			zap.Error(syncErr),
		)
		return result, syncErr
	}

	s.Log.Info("sync completed",
		zap.String("trigger", trigger),
		zap.Any("counts", result.Counts),
		zap.Duration("took", run.EndTime.Sub(run.StartTime)),
	)
	return result, nil
}

// execute reads every range, then replaces collections one after another. Tables
// replaced before a failure stay replaced.
func (s *SyncServiceImpl) execute(ctx context.Context, counts map[string]int) error {
	refs := make([]sheets.RangeRef, len(s.Options.Tables))
	for i, t := range s.Options.Tables {
		refs[i] = t.Range
	}

	rowsets, err := sheets.FetchAll(ctx, s.Reader, refs)
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}

	records := make([][]Record, len(s.Options.Tables))
	for i, t := range s.Options.Tables {
		records[i] = t.Mapping.Transform(rowsets[i])
	}

	for i, t := range s.Options.Tables {
		n, err := s.Replacer.Replace(ctx, t.Collection, records[i])
		if err != nil {
			return fmt.Errorf("sync table %s: %w", t.Name, err)
		}
		counts[t.Name] = n
	}

	for i, t := range s.Options.Tables {
		if t.Name != s.Options.BoardNameTable {
			continue
		}
		field, value := t.Mapping.HeaderValue(rowsets[i])
		if field == "" || value == "" {
			break
		}
		if err := s.BoardName.SetBoardName(ctx, value); err != nil {
			return fmt.Errorf("update board name: %w", err)
		}
	}
	return nil
}
