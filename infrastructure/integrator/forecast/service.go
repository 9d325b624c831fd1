package forecast

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	forecastdomain "github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/domain"
	"github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/forecastclient"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

var (
	ErrNoTrainingData     = errors.New("no sales to train on")
	ErrMissingAmount      = errors.New("prediction without predicted_amount")
	ErrUnexpectedLength   = errors.New("unexpected number of predictions")
	ErrNonConsecutiveDays = errors.New("predictions are not consecutive days")
)

type ForecastIntegrator interface {
	Train(ctx context.Context, samples []domain.TrainingSample) error
	Predict(ctx context.Context, req domain.PredictionRequest) ([]domain.PredictionPoint, error)
}

type ForecastService struct {
	Client forecastclient.Client
}

func New(client forecastclient.Client) ForecastIntegrator {
	return &ForecastService{
		Client: client,
	}
}

func (s *ForecastService) Train(ctx context.Context, samples []domain.TrainingSample) error {
	if len(samples) == 0 {
		return domain.NewError(domain.ValidationErrorKind, "train", ErrNoTrainingData)
	}

	req := forecastdomain.TrainRequest{
		Sales: make([]forecastdomain.TrainingSale, 0, len(samples)),
	}
	for _, sample := range samples {
		req.Sales = append(req.Sales, forecastdomain.TrainingSale{
			SaleDate:    sample.Date.Format(time.DateOnly),
			TotalAmount: sample.Amount.InexactFloat64(),
		})
	}

	if _, err := s.Client.Train(ctx, req); err != nil {
		return domain.NewError(domain.TrainingErrorKind, "train", err)
	}

	return nil
}

func (s *ForecastService) Predict(ctx context.Context, req domain.PredictionRequest) ([]domain.PredictionPoint, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.Client.Predict(ctx, forecastdomain.PredictRequest{
		PredictionPeriod: req.PeriodDays,
		StartDate:        utils.FormatDate(req.StartDate),
		EndDate:          utils.FormatDate(req.EndDate),
	})
	if err != nil {
		return nil, domain.NewError(domain.PredictionErrorKind, "predict", err)
	}

	points, err := normalizePredictions(resp, req.PeriodDays)
	if err != nil {
		return nil, domain.NewError(domain.PredictionErrorKind, "predict", err)
	}

	return points, nil
}

// normalizePredictions parses and orders the rows, then requires exactly
// periodDays consecutive days.
func normalizePredictions(resp forecastdomain.PredictResponse, periodDays int) ([]domain.PredictionPoint, error) {
	points := make([]domain.PredictionPoint, 0, len(resp))
	for _, row := range resp {
		date, err := parsePredictionDate(row.Date)
		if err != nil {
			return nil, err
		}
		if row.PredictedAmount == nil {
			return nil, errors.Wrapf(ErrMissingAmount, "date %s", row.Date)
		}

		points = append(points, domain.PredictionPoint{
			Date:            date,
			PredictedAmount: utils.DecimalFromFloat(*row.PredictedAmount),
			LowerBound:      nullDecimal(row.LowerBound),
			UpperBound:      nullDecimal(row.UpperBound),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})

	if len(points) != periodDays {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnexpectedLength, len(points), periodDays)
	}

	for i := 1; i < len(points); i++ {
		if !points[i].Date.Equal(points[i-1].Date.AddDate(0, 0, 1)) {
			return nil, fmt.Errorf("%w: %s follows %s", ErrNonConsecutiveDays,
				points[i].Date.Format(time.DateOnly), points[i-1].Date.Format(time.DateOnly))
		}
	}

	return points, nil
}

// parsePredictionDate accepts YYYY-MM-DD and full RFC 3339 timestamps, truncated to the day.
func parsePredictionDate(value string) (time.Time, error) {
	if date, err := time.Parse(time.DateOnly, value); err == nil {
		return date, nil
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid prediction date %q", value)
	}

	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

func nullDecimal(value *float64) decimal.NullDecimal {
	if value == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(utils.DecimalFromFloat(*value))
}
