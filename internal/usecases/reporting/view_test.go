package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/salestrack/sales-tracker-api/internal/domain"
)

func TestView_LoadAndRefresh(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)

	f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return([]*domain.Sale{}, nil).Times(2)

	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportIdle, view.State().Status)

	state, err := view.Load(context.Background(), domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), state.Sequence)
	assert.Equal(t, domain.ReportLoaded, state.Status)

	state, err = view.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), state.Sequence)
	assert.Equal(t, uint64(2), view.State().Sequence)
}

func TestView_NewLoadSupersedesInFlightLoad(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)
	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	started := make(chan struct{})
	firstFilters := domain.SaleFilters{EndDate: ptrTime(day("2024-01-31"))}

	f.store.EXPECT().ListSales(gomock.Any(), firstFilters).
		DoAndReturn(func(ctx context.Context, _ domain.SaleFilters) ([]*domain.Sale, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
	f.store.EXPECT().ListSales(gomock.Any(), domain.SaleFilters{}).Return([]*domain.Sale{}, nil)

	type outcome struct {
		state *domain.ReportState
		err   error
	}
	first := make(chan outcome, 1)
	go func() {
		state, err := view.Load(context.Background(), firstFilters, weekPeriod)
		first <- outcome{state, err}
	}()

	<-started
	loading := view.State()
	assert.Equal(t, domain.ReportLoading, loading.Status)
	assert.Equal(t, uint64(1), loading.Sequence)

	second, err := view.Load(context.Background(), domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.Sequence)

	select {
	case result := <-first:
		assert.ErrorIs(t, result.err, ErrSuperseded)
		assert.Nil(t, result.state)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded load did not return")
	}

	final := view.State()
	assert.Equal(t, domain.ReportLoaded, final.Status)
	assert.Equal(t, uint64(2), final.Sequence)
	assert.Equal(t, domain.SaleFilters{}, final.Filters)
}

func TestView_FetchFailureClearsStaleData(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)
	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	gomock.InOrder(
		f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return(sampleSales(), nil),
		f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return(nil, errors.New("backend down")),
	)
	f.forecaster.EXPECT().Train(gomock.Any(), gomock.Any()).Return(errors.New("untrainable"))

	state, err := view.Load(context.Background(), domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	require.Len(t, state.Sales, 3)
	require.NotNil(t, state.Warning)

	state, err = view.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ReportLoadFailed, state.Status)
	assert.Nil(t, state.Sales)
	assert.Nil(t, state.Aggregation)
	assert.Nil(t, state.Warning)
	require.NotNil(t, state.Error)
	assert.Equal(t, domain.FetchErrorKind, state.Error.Kind)
}

func TestView_CallerCancellation(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)
	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.SaleFilters) ([]*domain.Sale, error) {
			cancel()
			return nil, ctx.Err()
		})

	_, err = view.Load(ctx, domain.SaleFilters{}, weekPeriod)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.ReportIdle, view.State().Status)
}

func TestView_CallerCancellationRestoresPreviousState(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)
	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	gomock.InOrder(
		f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).Return(sampleSales(), nil),
		f.store.EXPECT().ListSales(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ domain.SaleFilters) ([]*domain.Sale, error) {
				cancel()
				return nil, ctx.Err()
			}),
	)
	f.forecaster.EXPECT().Train(gomock.Any(), gomock.Any()).
		Return(domain.NewError(domain.TrainingErrorKind, "train", errors.New("service down")))

	loaded, err := view.Load(context.Background(), domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	require.NotNil(t, loaded.Warning)

	_, err = view.Load(ctx, domain.SaleFilters{}, weekPeriod)
	require.ErrorIs(t, err, context.Canceled)

	state := view.State()
	assert.Equal(t, domain.ReportIdle, state.Status)
	assert.Equal(t, loaded.Sequence, state.Sequence)
	require.NotNil(t, state.Warning)
	assert.Equal(t, domain.TrainingErrorKind, state.Warning.Kind)
	require.NotNil(t, state.Aggregation)
	assert.Equal(t, loaded.Aggregation.TotalSales, state.Aggregation.TotalSales)
	assert.Len(t, state.Sales, 3)
	assert.NotNil(t, state.FinishedAt)
}

func TestView_InvalidParametersKeepState(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)
	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	_, err = view.Load(context.Background(), domain.SaleFilters{}, domain.PredictionPeriod{Value: -1, Unit: domain.PeriodDays})

	assert.Equal(t, domain.ValidationErrorKind, domain.KindOf(err))
	assert.Equal(t, uint64(0), view.State().Sequence)
}

func TestViewRegistry_Ownership(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)

	view, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)
	assert.Len(t, view.ID, 12)

	got, err := registry.Get(view.ID, 1)
	require.NoError(t, err)
	assert.Same(t, view, got)

	_, err = registry.Get(view.ID, 2)
	assert.ErrorIs(t, err, ErrViewNotFound)

	assert.ErrorIs(t, registry.Delete(view.ID, 2), ErrViewNotFound)
	require.NoError(t, registry.Delete(view.ID, 1))

	_, err = registry.Get(view.ID, 1)
	assert.ErrorIs(t, err, ErrViewNotFound)
}

func TestViewRegistry_CreateRejectsInvalidPeriod(t *testing.T) {
	f := newOrchestratorFixture(t)
	registry := NewViewRegistry(f.orchestrator)

	_, err := registry.Create(1, domain.SaleFilters{}, domain.PredictionPeriod{Value: 1, Unit: "decades"})

	assert.Equal(t, domain.ValidationErrorKind, domain.KindOf(err))
	assert.Zero(t, registry.Len())
}

func TestViewRegistry_Sweep(t *testing.T) {
	f := newOrchestratorFixture(t)
	clock := day("2024-06-01")
	f.orchestrator.now = func() time.Time { return clock }
	registry := NewViewRegistry(f.orchestrator)

	stale, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	clock = clock.Add(20 * time.Minute)
	fresh, err := registry.Create(1, domain.SaleFilters{}, weekPeriod)
	require.NoError(t, err)

	clock = clock.Add(15 * time.Minute)
	removed := registry.Sweep(context.Background(), 30*time.Minute)

	assert.Equal(t, 1, removed)
	_, err = registry.Get(stale.ID, 1)
	assert.ErrorIs(t, err, ErrViewNotFound)
	_, err = registry.Get(fresh.ID, 1)
	assert.NoError(t, err)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
