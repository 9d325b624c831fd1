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

// Retrainer fits the forecasting model on recent sales.
type Retrainer interface {
	Retrain(ctx context.Context, since time.Time) (int, error)
}

type ForecastRetrainConfig struct {
	CronSchedule string
	LookbackDays int
	Enabled      bool
}

// ForecastRetrainService keeps the forecasting model warm by retraining it on a schedule.
type ForecastRetrainService struct {
	scheduler *gocron.Scheduler
	config    ForecastRetrainConfig
	retrainer Retrainer
	now       func() time.Time

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSalesCount      int
	lastError           string
}

func NewForecastRetrainService(retrainer Retrainer, appConfig *config.Config) *ForecastRetrainService {
	retrainConfig := ForecastRetrainConfig{
		CronSchedule: appConfig.ForecastRetrain.CronSchedule,
		LookbackDays: appConfig.ForecastRetrain.LookbackDays,
		Enabled:      appConfig.ForecastRetrain.Enabled,
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule": retrainConfig.CronSchedule,
		"lookback_days": retrainConfig.LookbackDays,
		"enabled":       retrainConfig.Enabled,
	}).Info("forecast retrain schedule loaded")

	return &ForecastRetrainService{
		scheduler: gocron.NewScheduler(time.Local),
		config:    retrainConfig,
		retrainer: retrainer,
		now:       time.Now,
	}
}

func (s *ForecastRetrainService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("forecast retrain disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("starting forecast retrain scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.retrain(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule forecast retrain: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("stopping forecast retrain scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// retrain runs one retrain unless another one is already in progress.
func (s *ForecastRetrainService) retrain(ctx context.Context) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("forecast retrain already running, skipping")
		return
	}
	s.syncRunning = true
	startTime := s.now()
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	since := s.since()
	count, err := s.retrainer.Retrain(ctx, since)

	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()
	s.syncRunning = false

	if err != nil {
		s.lastError = err.Error()
		logrus.WithError(err).WithField("since", since.Format(time.DateOnly)).Error("forecast retrain failed")
		return
	}

	s.lastError = ""
	s.lastSalesCount = count
	s.lastSyncCompletedAt = s.now()

	logrus.WithFields(logrus.Fields{
		"duration":    s.lastSyncCompletedAt.Sub(startTime).String(),
		"sales_count": count,
		"since":       since.Format(time.DateOnly),
	}).Info("forecast retrain finished")
}

// since is the first day of the lookback window.
func (s *ForecastRetrainService) since() time.Time {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -s.config.LookbackDays)
}

// TriggerManualSync starts a retrain in the background.
func (s *ForecastRetrainService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("forecast retrain already running, ignoring manual request")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("starting manual forecast retrain")
	go s.retrain(context.Background())
}

func (s *ForecastRetrainService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	return map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_lookback_days":     s.config.LookbackDays,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
		"last_sales_count":       s.lastSalesCount,
		"last_error":             s.lastError,
	}
}
