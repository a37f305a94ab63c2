package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/logger"
)

// Scheduler periodically runs syncs for sources whose NextSync has arrived.
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that polls every interval.
func NewScheduler(s *Syncer, interval time.Duration) *Scheduler {
	return &Scheduler{
		syncer:   s,
		interval: interval,
		logger:   logger.With(zap.String("component", "scheduler")),
	}
}

// Run blocks, waking every interval to sync due sources, until ctx is
// canceled. Individual sync failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.syncer.store.DataSources().ListDue(ctx, s.syncer.now())
	if err != nil {
		s.logger.Error("failed to list due sources", zap.Error(err))
		return
	}

	for _, ds := range due {
		if _, _, err := s.syncer.Sync(ctx, ds.OwnerID, ds.ID); err != nil {
			if ecoerrors.IsType(err, ecoerrors.ErrorTypeConflict) {
				// Already syncing; it will pick up its own schedule.
				continue
			}
			s.logger.Warn("scheduled sync failed",
				zap.String("sourceId", ds.ID),
				zap.String("type", string(ds.Type)),
				zap.Error(err))
		}
	}
}
