package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

// Cron job types accepted by RunCronJob.
const (
	CronJobTypeForecastRetrain = "forecast-retrain"
	CronJobTypeReportViewSweep = "report-view-sweep"
	CronJobTypeAll             = "all"
)

// CronJob is a scheduled job that can also be run on demand.
type CronJob interface {
	TriggerManualSync()
	GetStatus() map[string]any
}

type CronJobServices struct {
	ForecastRetrainService CronJob
	ReportViewSweepService CronJob
}

func (s CronJobServices) jobs() map[string]CronJob {
	jobs := map[string]CronJob{}
	if s.ForecastRetrainService != nil {
		jobs[CronJobTypeForecastRetrain] = s.ForecastRetrainService
	}
	if s.ReportViewSweepService != nil {
		jobs[CronJobTypeReportViewSweep] = s.ReportViewSweepService
	}
	return jobs
}

func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Cron job type is required", nil)
			return
		}

		jobs := services.jobs()

		switch cronType {
		case CronJobTypeForecastRetrain, CronJobTypeReportViewSweep:
			job, ok := jobs[cronType]
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Cron job is not available", nil)
				return
			}
			job.TriggerManualSync()

		case CronJobTypeAll:
			for _, job := range jobs {
				job.TriggerManualSync()
			}

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid cron job type. Accepted values: forecast-retrain, report-view-sweep, all", nil)
			return
		}

		log.ForContext(r.Context()).WithField("cron_type", cronType).Info("cron job triggered manually")

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Cron job started",
			"type":    cronType,
		})
	}
}

func GetCronStatus(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]any{}
		for name, job := range services.jobs() {
			status[name] = job.GetStatus()
		}

		writeJSON(w, r, http.StatusOK, status)
	}
}
