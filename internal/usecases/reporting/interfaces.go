package reporting

import (
	"context"

	"github.com/salestrack/sales-tracker-api/internal/domain"
)

// SalesStore is the source of sales for a report cycle.
type SalesStore interface {
	ListSales(ctx context.Context, filters domain.SaleFilters) ([]*domain.Sale, error)
}

// Forecaster trains the forecasting model and fetches predictions from it.
type Forecaster interface {
	Train(ctx context.Context, samples []domain.TrainingSample) error
	Predict(ctx context.Context, req domain.PredictionRequest) ([]domain.PredictionPoint, error)
}
