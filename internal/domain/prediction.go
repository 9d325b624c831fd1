package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type PeriodUnit string

const (
	PeriodDays   PeriodUnit = "days"
	PeriodWeeks  PeriodUnit = "weeks"
	PeriodMonths PeriodUnit = "months"
	PeriodYears  PeriodUnit = "years"
)

// Calendar approximations used when converting a period into days.
const (
	DaysPerWeek  = 7
	DaysPerMonth = 30
	DaysPerYear  = 365
)

// MaxPeriodDays bounds a prediction horizon.
const MaxPeriodDays = 10 * DaysPerYear

type PredictionPeriod struct {
	Value     int        `json:"value"`
	Unit      PeriodUnit `json:"unit"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Days converts the period into a day count. It returns 0 for an unknown unit.
func (p PredictionPeriod) Days() int {
	switch p.Unit {
	case PeriodDays:
		return p.Value
	case PeriodWeeks:
		return p.Value * DaysPerWeek
	case PeriodMonths:
		return p.Value * DaysPerMonth
	case PeriodYears:
		return p.Value * DaysPerYear
	}
	return 0
}

func (p PredictionPeriod) Validate() error {
	if p.Value <= 0 {
		return NewError(ValidationErrorKind, "prediction period", ErrInvalidPeriodValue)
	}
	// Checked before Days so the multiplication stays in range.
	if p.Value > MaxPeriodDays {
		return NewError(ValidationErrorKind, "prediction period", ErrPeriodTooLong)
	}
	days := p.Days()
	if days <= 0 {
		return NewError(ValidationErrorKind, "prediction period", fmt.Errorf("%w: %q", ErrInvalidPeriodUnit, p.Unit))
	}
	if days > MaxPeriodDays {
		return NewError(ValidationErrorKind, "prediction period", ErrPeriodTooLong)
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return NewError(ValidationErrorKind, "prediction period", ErrInvalidDateRange)
	}
	return nil
}

// Request builds the forecast request, anchoring on latest when no start date is set.
func (p PredictionPeriod) Request(latest time.Time) PredictionRequest {
	start := latest
	if p.StartDate != nil {
		start = *p.StartDate
	}
	return PredictionRequest{
		PeriodDays: p.Days(),
		StartDate:  &start,
		EndDate:    p.EndDate,
	}
}

type PeriodPreset struct {
	Key    string           `json:"key"`
	Label  string           `json:"label"`
	Period PredictionPeriod `json:"period"`
}

var PeriodPresets = []PeriodPreset{
	{Key: "7d", Label: "7 days", Period: PredictionPeriod{Value: 7, Unit: PeriodDays}},
	{Key: "15d", Label: "15 days", Period: PredictionPeriod{Value: 15, Unit: PeriodDays}},
	{Key: "1m", Label: "1 month", Period: PredictionPeriod{Value: 1, Unit: PeriodMonths}},
	{Key: "3m", Label: "3 months", Period: PredictionPeriod{Value: 3, Unit: PeriodMonths}},
	{Key: "6m", Label: "6 months", Period: PredictionPeriod{Value: 6, Unit: PeriodMonths}},
	{Key: "1y", Label: "1 year", Period: PredictionPeriod{Value: 1, Unit: PeriodYears}},
}

func PresetByKey(key string) (PredictionPeriod, bool) {
	for _, preset := range PeriodPresets {
		if preset.Key == key {
			return preset.Period, true
		}
	}
	return PredictionPeriod{}, false
}

type PredictionRequest struct {
	PeriodDays int
	StartDate  *time.Time
	EndDate    *time.Time
}

func (r PredictionRequest) Validate() error {
	if r.PeriodDays <= 0 {
		return NewError(ValidationErrorKind, "prediction request", ErrInvalidPeriodValue)
	}
	if r.PeriodDays > MaxPeriodDays {
		return NewError(ValidationErrorKind, "prediction request", ErrPeriodTooLong)
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return NewError(ValidationErrorKind, "prediction request", ErrInvalidDateRange)
	}
	return nil
}

type PredictionPoint struct {
	Date            time.Time           `json:"date"`
	PredictedAmount decimal.Decimal     `json:"predicted_amount"`
	LowerBound      decimal.NullDecimal `json:"lower_bound"`
	UpperBound      decimal.NullDecimal `json:"upper_bound"`
}

type TrainingSample struct {
	Date   time.Time
	Amount decimal.Decimal
}

// TrainingSamples projects sales onto the forecast training shape, oldest first.
func TrainingSamples(sales []*Sale) []TrainingSample {
	samples := make([]TrainingSample, 0, len(sales))
	for _, sale := range sales {
		if sale == nil {
			continue
		}
		samples = append(samples, TrainingSample{Date: sale.SaleDate, Amount: sale.TotalAmount})
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Date.Before(samples[j].Date)
	})

	return samples
}
