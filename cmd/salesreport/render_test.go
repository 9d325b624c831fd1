package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salestrack/sales-tracker-api/internal/domain"
)

func TestRender_LoadedReport(t *testing.T) {
	state := &domain.ReportState{
		Status: domain.ReportLoaded,
		Period: domain.PredictionPeriod{Value: 1, Unit: domain.PeriodMonths},
		Aggregation: &domain.AggregationResult{
			TotalSales:    decimal.RequireFromString("150.5"),
			SalesByClient: map[string]decimal.Decimal{"Globex": decimal.NewFromInt(50), "Acme": decimal.RequireFromString("100.5")},
			SalesByUser:   []domain.UserTotal{{User: "1 - Ana", UserID: 1, Total: decimal.RequireFromString("150.5")}},
		},
		Predictions: []domain.PredictionPoint{{
			Date:            time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			PredictedAmount: decimal.NewFromInt(80),
			LowerBound:      decimal.NewNullDecimal(decimal.NewFromInt(60)),
		}},
		Warning: &domain.ReportNotice{Kind: domain.PredictionErrorKind, Message: "Prediction failed"},
	}

	var out bytes.Buffer
	require.NoError(t, render(&out, state))

	text := out.String()
	assert.Contains(t, text, "1 months (30 days)")
	assert.Contains(t, text, "150.50")
	assert.Contains(t, text, "Prediction failed")
	assert.Contains(t, text, "1 - Ana")
	assert.Contains(t, text, "2024-03-02")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("Acme")), bytes.Index(out.Bytes(), []byte("Globex")))
}

func TestRender_FailedReportStopsAtError(t *testing.T) {
	state := &domain.ReportState{
		Status: domain.ReportLoadFailed,
		Period: domain.PredictionPeriod{Value: 7, Unit: domain.PeriodDays},
		Error:  &domain.ReportNotice{Kind: domain.FetchErrorKind, Message: "Could not load sales"},
	}

	var out bytes.Buffer
	require.NoError(t, render(&out, state))

	assert.Contains(t, out.String(), "Could not load sales")
	assert.NotContains(t, out.String(), "CLIENT")
}

func TestBuildFilters(t *testing.T) {
	filters, err := buildFilters("2024-01-01", "2024-01-31", 3)
	require.NoError(t, err)
	require.NotNil(t, filters.UserID)
	assert.Equal(t, 3, *filters.UserID)

	_, err = buildFilters("2024-02-01", "2024-01-31", 0)
	assert.Error(t, err)

	_, err = buildFilters("01/02/2024", "", 0)
	assert.Error(t, err)
}
