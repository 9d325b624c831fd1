package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/salestrack/sales-tracker-api/internal/config"
)

// ViewSweeper drops report views that have been idle for too long.
type ViewSweeper interface {
	Sweep(ctx context.Context, maxIdle time.Duration) int
}

// ReportViewSweepService evicts idle report views so the registry stays bounded.
type ReportViewSweepService struct {
	scheduler    *gocron.Scheduler
	cronSchedule string
	maxIdle      time.Duration
	sweeper      ViewSweeper

	syncMutex           sync.Mutex
	lastSyncCompletedAt time.Time
	lastRemoved         int
	totalRemoved        int
}

func NewReportViewSweepService(sweeper ViewSweeper, appConfig *config.Config) *ReportViewSweepService {
	return &ReportViewSweepService{
		scheduler:    gocron.NewScheduler(time.Local),
		cronSchedule: appConfig.Report.ViewSweepCron,
		maxIdle:      appConfig.Report.ViewMaxIdle,
		sweeper:      sweeper,
	}
}

func (s *ReportViewSweepService) Start(ctx context.Context) error {
	if s.maxIdle <= 0 {
		logrus.Info("report view sweep disabled, views never expire")
		return nil
	}

	_, err := s.scheduler.Cron(s.cronSchedule).Do(func() {
		s.sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule report view sweep: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("stopping report view sweep scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *ReportViewSweepService) sweep(ctx context.Context) {
	removed := s.sweeper.Sweep(ctx, s.maxIdle)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	s.lastRemoved = removed
	s.totalRemoved += removed
	s.lastSyncCompletedAt = time.Now()
}

func (s *ReportViewSweepService) TriggerManualSync() {
	go s.sweep(context.Background())
}

func (s *ReportViewSweepService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.maxIdle > 0,
		"sync_cron":              s.cronSchedule,
		"max_idle":               s.maxIdle.String(),
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_removed":           s.lastRemoved,
		"total_removed":          s.totalRemoved,
	}
}
