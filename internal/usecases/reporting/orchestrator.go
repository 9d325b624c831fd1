package reporting

import (
	"context"
	"time"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

type Orchestrator struct {
	store      SalesStore
	forecaster Forecaster
	groupKey   domain.UserGroupKey
	now        func() time.Time
}

func NewOrchestrator(store SalesStore, forecaster Forecaster, groupKey domain.UserGroupKey) *Orchestrator {
	return &Orchestrator{
		store:      store,
		forecaster: forecaster,
		groupKey:   groupKey,
		now:        time.Now,
	}
}

// Run executes one report cycle for stateless callers.
//
// The returned state is always Loaded or LoadFailed. An error is returned only
// when the parameters are invalid or ctx ends before the cycle completes.
func (o *Orchestrator) Run(ctx context.Context, filters domain.SaleFilters, period domain.PredictionPeriod) (*domain.ReportState, error) {
	if err := validate(filters, period); err != nil {
		return nil, err
	}
	return o.cycle(ctx, filters, period)
}

// Retrain fits the model on every sale dated on or after since. It returns the
// number of sales used; zero sales means nothing was sent.
func (o *Orchestrator) Retrain(ctx context.Context, since time.Time) (int, error) {
	sales, err := o.store.ListSales(ctx, domain.SaleFilters{StartDate: &since})
	if err != nil {
		return 0, domain.NewError(domain.FetchErrorKind, "retrain", err)
	}
	if len(sales) == 0 {
		return 0, nil
	}

	if err := o.forecaster.Train(ctx, domain.TrainingSamples(sales)); err != nil {
		return 0, ensureKind(err, domain.TrainingErrorKind, "retrain")
	}

	return len(sales), nil
}

func validate(filters domain.SaleFilters, period domain.PredictionPeriod) error {
	if err := filters.Validate(); err != nil {
		return err
	}
	return period.Validate()
}

func (o *Orchestrator) cycle(ctx context.Context, filters domain.SaleFilters, period domain.PredictionPeriod) (*domain.ReportState, error) {
	logger := log.ForContext(ctx)
	started := o.now()

	state := &domain.ReportState{
		Status:      domain.ReportLoading,
		Filters:     filters,
		Period:      period,
		Sales:       []*domain.Sale{},
		Predictions: []domain.PredictionPoint{},
		StartedAt:   &started,
	}

	sales, err := o.store.ListSales(ctx, filters)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).Warn("report fetch failed")
		state.Sales = nil
		state.Predictions = nil
		state.Error = domain.NoticeFromError(ensureKind(err, domain.FetchErrorKind, "fetch sales"))
		return o.finish(state, domain.ReportLoadFailed), nil
	}

	aggregation := domain.AggregateSales(sales, filters.UserID, o.groupKey)
	state.Sales = sales
	state.Aggregation = &aggregation

	if len(sales) == 0 {
		if filters.Active() {
			state.Info = domain.NoMatchingSalesMessage
		}
		return o.finish(state, domain.ReportLoaded), nil
	}

	// The request anchors on the latest sale, so it is only known after the fetch.
	latest, _ := domain.LatestSaleDate(sales)
	request := period.Request(latest)
	if err := request.Validate(); err != nil {
		logger.WithError(err).Debug("prediction request rejected")
		state.Warning = domain.NoticeFromError(err)
		return o.finish(state, domain.ReportLoaded), nil
	}

	if err := o.forecaster.Train(ctx, domain.TrainingSamples(sales)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).Warn("forecast training failed")
		state.Warning = domain.NoticeFromError(ensureKind(err, domain.TrainingErrorKind, "train"))
		return o.finish(state, domain.ReportLoaded), nil
	}
	state.ModelTrained = true

	predictions, err := o.forecaster.Predict(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).Warn("forecast prediction failed")
		state.Warning = domain.NoticeFromError(ensureKind(err, domain.PredictionErrorKind, "predict"))
		return o.finish(state, domain.ReportLoaded), nil
	}
	state.Predictions = predictions

	logger.WithFields(log.Fields{
		"sales_count":       len(sales),
		"predictions_count": len(predictions),
	}).Debug("report cycle finished")

	return o.finish(state, domain.ReportLoaded), nil
}

func (o *Orchestrator) finish(state *domain.ReportState, status domain.ReportStatus) *domain.ReportState {
	finished := o.now()
	state.Status = status
	state.FinishedAt = &finished
	return state
}

// ensureKind tags err with kind unless it already carries it.
func ensureKind(err error, kind domain.ErrorKind, op string) error {
	if domain.KindOf(err) == kind {
		return err
	}
	return domain.NewError(kind, op, err)
}
