package handler

import (
	"net/http"

	"github.com/salestrack/sales-tracker-api/internal/api/handler/router"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/reporting"
	"github.com/salestrack/sales-tracker-api/internal/usecases/selling"
	"github.com/salestrack/sales-tracker-api/pkg/middleware"
)

var authenticated = []func(http.Handler) http.Handler{middleware.RequireUser()}

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/login",
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/v1/logout",
			Method:      http.MethodPost,
			Handler:     Logout(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/refresh",
			Method:      http.MethodPost,
			Handler:     Refresh(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: authenticated,
		},
	}
}

func User(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/users",
			Method:      http.MethodGet,
			Handler:     ListUsers(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/users",
			Method:      http.MethodPost,
			Handler:     CreateUser(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodGet,
			Handler:     GetUser(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodPut,
			Handler:     UpdateUser(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/users/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteUser(service),
			Middlewares: authenticated,
		},
	}
}

func Sales(service selling.Seller) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/sales",
			Method:      http.MethodGet,
			Handler:     ListSales(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/sales",
			Method:      http.MethodPost,
			Handler:     CreateSale(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodGet,
			Handler:     GetSale(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodPut,
			Handler:     UpdateSale(service),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/sales/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteSale(service),
			Middlewares: authenticated,
		},
	}
}

func Reports(orchestrator *reporting.Orchestrator, views *reporting.ViewRegistry, defaultPeriod domain.PredictionPeriod) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/reports/sales",
			Method:      http.MethodGet,
			Handler:     GetSalesReport(orchestrator, defaultPeriod),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/periods",
			Method:      http.MethodGet,
			Handler:     GetReportPeriods(defaultPeriod),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/views",
			Method:      http.MethodPost,
			Handler:     CreateReportView(views, defaultPeriod),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/views/:id",
			Method:      http.MethodGet,
			Handler:     GetReportView(views),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/views/:id",
			Method:      http.MethodPut,
			Handler:     UpdateReportView(views, defaultPeriod),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/views/:id/refresh",
			Method:      http.MethodPost,
			Handler:     RefreshReportView(views),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/reports/views/:id",
			Method:      http.MethodDelete,
			Handler:     DeleteReportView(views),
			Middlewares: authenticated,
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/run/:type",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: authenticated,
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: authenticated,
		},
	}
}
