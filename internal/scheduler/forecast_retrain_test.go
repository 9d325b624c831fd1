package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/salestrack/sales-tracker-api/internal/config"
)

type fakeRetrainer struct {
	mu      sync.Mutex
	calls   []time.Time
	count   int
	err     error
	release chan struct{}
}

func (f *fakeRetrainer) Retrain(_ context.Context, since time.Time) (int, error) {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, since)
	return f.count, f.err
}

func newRetrainService(retrainer Retrainer) *ForecastRetrainService {
	cfg := &config.Config{ForecastRetrain: config.ForecastRetrain{
		CronSchedule: "0 2 * * *",
		LookbackDays: 30,
		Enabled:      true,
	}}
	service := NewForecastRetrainService(retrainer, cfg)
	service.now = func() time.Time { return time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC) }
	return service
}

func TestForecastRetrain_UsesLookbackWindow(t *testing.T) {
	retrainer := &fakeRetrainer{count: 42}
	service := newRetrainService(retrainer)

	service.retrain(context.Background())

	assert.Equal(t, []time.Time{time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)}, retrainer.calls)
	status := service.GetStatus()
	assert.Equal(t, 42, status["last_sales_count"])
	assert.Equal(t, "", status["last_error"])
	assert.Equal(t, false, status["sync_running"])
}

func TestForecastRetrain_RecordsFailure(t *testing.T) {
	retrainer := &fakeRetrainer{err: errors.New("forecast service down")}
	service := newRetrainService(retrainer)

	service.retrain(context.Background())

	status := service.GetStatus()
	assert.Equal(t, "forecast service down", status["last_error"])
	assert.True(t, status["last_sync_completed_at"].(time.Time).IsZero())
}

func TestForecastRetrain_SkipsOverlappingRuns(t *testing.T) {
	retrainer := &fakeRetrainer{release: make(chan struct{})}
	service := newRetrainService(retrainer)

	done := make(chan struct{})
	go func() {
		service.retrain(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return service.GetStatus()["sync_running"] == true
	}, time.Second, 5*time.Millisecond)

	service.retrain(context.Background())
	close(retrainer.release)
	<-done

	assert.Len(t, retrainer.calls, 1)
}

func TestForecastRetrain_DisabledDoesNotSchedule(t *testing.T) {
	service := NewForecastRetrainService(&fakeRetrainer{}, &config.Config{})

	assert.NoError(t, service.Start(context.Background()))
	assert.Empty(t, service.scheduler.Jobs())
}

type fakeSweeper struct {
	removed int
	maxIdle time.Duration
}

func (f *fakeSweeper) Sweep(_ context.Context, maxIdle time.Duration) int {
	f.maxIdle = maxIdle
	return f.removed
}

func TestReportViewSweep(t *testing.T) {
	sweeper := &fakeSweeper{removed: 3}
	cfg := &config.Config{Report: config.Report{ViewMaxIdle: 30 * time.Minute, ViewSweepCron: "*/10 * * * *"}}
	service := NewReportViewSweepService(sweeper, cfg)

	service.sweep(context.Background())
	service.sweep(context.Background())

	assert.Equal(t, 30*time.Minute, sweeper.maxIdle)
	status := service.GetStatus()
	assert.Equal(t, 3, status["last_removed"])
	assert.Equal(t, 6, status["total_removed"])
}
