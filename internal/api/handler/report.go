package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/reporting"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
	"github.com/salestrack/sales-tracker-api/pkg/middleware"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

type PeriodRequest struct {
	Preset    string  `json:"preset" validate:"omitempty,oneof=7d 15d 1m 3m 6m 1y"`
	Value     int     `json:"value" validate:"omitempty,gt=0"`
	Unit      string  `json:"unit" validate:"omitempty,oneof=days weeks months years"`
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type ReportViewRequest struct {
	StartDate *string        `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string        `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	UserID    *int           `json:"user_id" validate:"omitempty,gt=0"`
	Period    *PeriodRequest `json:"period"`
}

type ReportViewResponse struct {
	ID    string              `json:"id"`
	State *domain.ReportState `json:"state"`
}

type PeriodsResponse struct {
	Default domain.PredictionPeriod `json:"default"`
	Presets []domain.PeriodPreset   `json:"presets"`
}

// GetSalesReport runs a single report cycle for the query filters and period.
func GetSalesReport(orchestrator *reporting.Orchestrator, defaultPeriod domain.PredictionPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, details := saleFiltersFromQuery(r)
		period := periodFromQuery(r, defaultPeriod, details)
		if len(details) > 0 {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid report parameters", details)
			return
		}

		state, err := orchestrator.Run(r.Context(), filters, period)
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		if state.Status == domain.ReportLoadFailed {
			log.ForContext(r.Context()).WithField("report_status", state.Status).Warn("sales report failed")
			apiErrors.WriteError(w, apiErrors.ErrReportFetch, state.Error.Message, state)
			return
		}

		writeJSON(w, r, http.StatusOK, state)
	}
}

func GetReportPeriods(defaultPeriod domain.PredictionPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, PeriodsResponse{
			Default: defaultPeriod,
			Presets: domain.PeriodPresets,
		})
	}
}

func CreateReportView(views *reporting.ViewRegistry, defaultPeriod domain.PredictionPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())

		filters, period, ok := decodeReportView(w, r, defaultPeriod)
		if !ok {
			return
		}

		view, err := views.Create(claims.UserID, filters, period)
		if err != nil {
			writeReportError(w, r, err)
			return
		}
		middleware.AddAccessLogFields(r.Context(), log.Fields{"view_id": view.ID})

		state, err := view.Load(r.Context(), filters, period)
		if err != nil {
			// The id was never returned, so drop the view now.
			_ = views.Delete(view.ID, claims.UserID)
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, ReportViewResponse{ID: view.ID, State: state})
	}
}

func GetReportView(views *reporting.ViewRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := reportView(w, r, views)
		if !ok {
			return
		}

		writeJSON(w, r, http.StatusOK, ReportViewResponse{ID: view.ID, State: view.State()})
	}
}

// UpdateReportView reloads the view with new parameters, superseding any load in flight.
func UpdateReportView(views *reporting.ViewRegistry, defaultPeriod domain.PredictionPeriod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := reportView(w, r, views)
		if !ok {
			return
		}

		filters, period, ok := decodeReportView(w, r, defaultPeriod)
		if !ok {
			return
		}

		state, err := view.Load(r.Context(), filters, period)
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, ReportViewResponse{ID: view.ID, State: state})
	}
}

func RefreshReportView(views *reporting.ViewRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := reportView(w, r, views)
		if !ok {
			return
		}

		state, err := view.Refresh(r.Context())
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, ReportViewResponse{ID: view.ID, State: state})
	}
}

func DeleteReportView(views *reporting.ViewRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		if err := views.Delete(id, claims.UserID); err != nil {
			writeReportError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func reportView(w http.ResponseWriter, r *http.Request, views *reporting.ViewRegistry) (*reporting.View, bool) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	id := httprouter.ParamsFromContext(r.Context()).ByName("id")

	middleware.AddAccessLogFields(r.Context(), log.Fields{"view_id": id})

	view, err := views.Get(id, claims.UserID)
	if err != nil {
		writeReportError(w, r, err)
		return nil, false
	}
	return view, true
}

func decodeReportView(w http.ResponseWriter, r *http.Request, defaultPeriod domain.PredictionPeriod) (domain.SaleFilters, domain.PredictionPeriod, bool) {
	var req ReportViewRequest
	if err := decodeJSON(r, &req); err != nil {
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request body", nil)
		return domain.SaleFilters{}, domain.PredictionPeriod{}, false
	}

	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return domain.SaleFilters{}, domain.PredictionPeriod{}, false
	}

	filters := domain.SaleFilters{
		StartDate: optionalDate(req.StartDate),
		EndDate:   optionalDate(req.EndDate),
		UserID:    req.UserID,
	}

	return filters, req.Period.period(defaultPeriod), true
}

// period resolves the request against the default: a preset wins over an
// explicit value and unit, and anything left unset falls back to the default.
func (p *PeriodRequest) period(defaultPeriod domain.PredictionPeriod) domain.PredictionPeriod {
	period := domain.PredictionPeriod{Value: defaultPeriod.Value, Unit: defaultPeriod.Unit}
	if p == nil {
		return period
	}

	if preset, ok := domain.PresetByKey(p.Preset); ok {
		period = preset
	} else {
		if p.Value > 0 {
			period.Value = p.Value
		}
		if p.Unit != "" {
			period.Unit = domain.PeriodUnit(p.Unit)
		}
	}

	period.StartDate = optionalDate(p.StartDate)
	period.EndDate = optionalDate(p.EndDate)

	return period
}

// periodFromQuery reads period, period_value, period_unit, prediction_start
// and prediction_end. Malformed values are added to details.
func periodFromQuery(r *http.Request, defaultPeriod domain.PredictionPeriod, details map[string]string) domain.PredictionPeriod {
	query := r.URL.Query()
	req := &PeriodRequest{
		Preset: query.Get("period"),
		Unit:   query.Get("period_unit"),
	}

	if req.Preset != "" {
		if _, ok := domain.PresetByKey(req.Preset); !ok {
			details["period"] = "must be one of: 7d 15d 1m 3m 6m 1y"
		}
	}

	if value := query.Get("period_value"); value != "" {
		periodValue, err := strconv.Atoi(value)
		if err != nil || periodValue <= 0 {
			details["period_value"] = "must be a positive integer"
		}
		req.Value = periodValue
	}

	for param, dst := range map[string]**string{
		"prediction_start": &req.StartDate,
		"prediction_end":   &req.EndDate,
	} {
		value := query.Get(param)
		if value == "" {
			continue
		}
		if _, err := utils.ParseDate(value); err != nil {
			details[param] = "must be a date in YYYY-MM-DD format"
			continue
		}
		*dst = &value
	}

	return req.period(defaultPeriod)
}

func optionalDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	date, err := utils.ParseDate(*value)
	if err != nil {
		return nil
	}
	return date
}

func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reporting.ErrViewNotFound):
		apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "Report view not found", nil)
	case errors.Is(err, reporting.ErrSuperseded):
		apiErrors.WriteError(w, apiErrors.ErrReportSuperseded, "Report load was superseded by a newer request", nil)
	case errors.Is(err, context.Canceled):
		log.ForContext(r.Context()).Debug("report load cancelled by client")
		apiErrors.WriteError(w, apiErrors.ErrCommunication, "Report load cancelled", nil)
	default:
		writeServiceError(w, r, err)
	}
}
