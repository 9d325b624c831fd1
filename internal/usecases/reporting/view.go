package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

var ErrSuperseded = errors.New("report load superseded by a newer request")

// View is a long-lived report whose loads follow last-write-wins: starting a
// load cancels the one in flight, and a superseded load never touches state.
type View struct {
	ID      string
	OwnerID int

	orchestrator *Orchestrator

	mu         sync.Mutex
	seq        uint64
	cancel     context.CancelFunc
	state      *domain.ReportState
	settled    *domain.ReportState
	lastAccess time.Time
}

func newView(id string, ownerID int, orchestrator *Orchestrator, filters domain.SaleFilters, period domain.PredictionPeriod) *View {
	return &View{
		ID:           id,
		OwnerID:      ownerID,
		orchestrator: orchestrator,
		state: &domain.ReportState{
			Status:  domain.ReportIdle,
			Filters: filters,
			Period:  period,
		},
		lastAccess: orchestrator.now(),
	}
}

// Load runs a cycle with new parameters. If another Load starts before this
// one finishes, this one returns ErrSuperseded.
func (v *View) Load(ctx context.Context, filters domain.SaleFilters, period domain.PredictionPeriod) (*domain.ReportState, error) {
	if err := validate(filters, period); err != nil {
		return nil, err
	}

	loadCtx, seq := v.begin(ctx, filters, period)
	defer v.release(seq)

	logger := log.ForContext(ctx).WithFields(log.Fields{
		"view_id":     v.ID,
		"view_seq":    seq,
		"report_user": v.OwnerID,
	})
	logger.Debug("report load started")

	result, err := v.orchestrator.cycle(loadCtx, filters, period)

	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.seq {
		logger.Debug("report load superseded")
		return nil, ErrSuperseded
	}

	if err != nil {
		// Cancelled by the caller: restore the state from before the load, as idle.
		restored := v.settled.Clone()
		restored.Status = domain.ReportIdle
		v.state = restored
		v.settled = nil
		return nil, err
	}

	result.Sequence = seq
	v.state = result
	v.settled = nil
	v.lastAccess = v.orchestrator.now()

	logger.WithField("report_status", result.Status).Debug("report load finished")

	return result.Clone(), nil
}

// Refresh reruns the cycle with the current filters and period.
func (v *View) Refresh(ctx context.Context) (*domain.ReportState, error) {
	v.mu.Lock()
	filters, period := v.state.Filters, v.state.Period
	v.mu.Unlock()

	return v.Load(ctx, filters, period)
}

// State returns a snapshot of the current state.
func (v *View) State() *domain.ReportState {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastAccess = v.orchestrator.now()
	return v.state.Clone()
}

// Close cancels any load in flight.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) begin(ctx context.Context, filters domain.SaleFilters, period domain.PredictionPeriod) (context.Context, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	// settled is cleared whenever a load completes, so a superseded load leaves
	// the snapshot taken before it in place.
	if v.settled == nil {
		v.settled = v.state
	}

	v.seq++
	loadCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	started := v.orchestrator.now()
	loading := v.state.Clone()
	loading.Status = domain.ReportLoading
	loading.Sequence = v.seq
	loading.Filters = filters
	loading.Period = period
	loading.Error = nil
	loading.Warning = nil
	loading.Info = ""
	loading.ModelTrained = false
	loading.StartedAt = &started
	loading.FinishedAt = nil

	v.state = loading
	v.lastAccess = started

	return loadCtx, v.seq
}

// release drops the cancel func of load seq if it is still the current one.
func (v *View) release(seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq == v.seq && v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) idle(now time.Time, maxIdle time.Duration) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.cancel == nil && now.Sub(v.lastAccess) > maxIdle
}
