package sync

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler triggers Sync on a cron schedule. Runs that overlap an in-flight run
// join it instead of starting a second one.
type Scheduler struct {
	scheduler *cron.Cron
	service   SyncService
	log       *zap.Logger
}

// NewScheduler returns nil when spec is empty.
func NewScheduler(spec string, service SyncService, log *zap.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, nil
	}

	s := &Scheduler{
		scheduler: cron.New(),
		service:   service,
		log:       log,
	}
	if _, err := s.scheduler.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	if _, err := s.service.Sync(context.Background(), "cron"); err != nil {
		s.log.Warn("scheduled sync failed", zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	if s == nil {
		return
	}
	s.scheduler.Start()
	s.log.Info("sync scheduler started", zap.Int("entries", len(s.scheduler.Entries())))
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	select {
	case <-s.scheduler.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
