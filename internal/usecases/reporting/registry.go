package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/log"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

var ErrViewNotFound = errors.New("report view not found")

// ViewRegistry keeps the report views of every user in memory.
type ViewRegistry struct {
	orchestrator *Orchestrator

	mu    sync.RWMutex
	views map[string]*View
	newID func() (string, error)
}

func NewViewRegistry(orchestrator *Orchestrator) *ViewRegistry {
	return &ViewRegistry{
		orchestrator: orchestrator,
		views:        make(map[string]*View),
		newID:        utils.GenerateID,
	}
}

// Create registers an idle view for ownerID. Parameters are validated up front
// so a view never holds an unusable configuration.
func (r *ViewRegistry) Create(ownerID int, filters domain.SaleFilters, period domain.PredictionPeriod) (*View, error) {
	if err := validate(filters, period); err != nil {
		return nil, err
	}

	id, err := r.newID()
	if err != nil {
		return nil, err
	}

	view := newView(id, ownerID, r.orchestrator, filters, period)

	r.mu.Lock()
	r.views[id] = view
	r.mu.Unlock()

	return view, nil
}

// Get returns the view when it exists and belongs to ownerID.
func (r *ViewRegistry) Get(id string, ownerID int) (*View, error) {
	r.mu.RLock()
	view, ok := r.views[id]
	r.mu.RUnlock()

	if !ok || view.OwnerID != ownerID {
		return nil, ErrViewNotFound
	}
	return view, nil
}

func (r *ViewRegistry) Delete(id string, ownerID int) error {
	r.mu.Lock()
	view, ok := r.views[id]
	if !ok || view.OwnerID != ownerID {
		r.mu.Unlock()
		return ErrViewNotFound
	}
	delete(r.views, id)
	r.mu.Unlock()

	view.Close()
	return nil
}

// Sweep drops views untouched for longer than maxIdle. Views with a load in
// flight are kept. It returns how many views were removed.
func (r *ViewRegistry) Sweep(ctx context.Context, maxIdle time.Duration) int {
	now := r.orchestrator.now()

	r.mu.Lock()
	var expired []*View
	for id, view := range r.views {
		if view.idle(now, maxIdle) {
			expired = append(expired, view)
			delete(r.views, id)
		}
	}
	r.mu.Unlock()

	for _, view := range expired {
		view.Close()
	}

	if len(expired) > 0 {
		log.ForContext(ctx).WithField("view_count", len(expired)).Info("idle report views removed")
	}

	return len(expired)
}

func (r *ViewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}
