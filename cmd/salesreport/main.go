package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast"
	"github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/forecastclient"
	"github.com/salestrack/sales-tracker-api/internal/config"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/reporting"
	"github.com/salestrack/sales-tracker-api/pkg/apiclient"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

func main() {
	var (
		startDate   string
		endDate     string
		userID      int
		preset      string
		periodValue int
		periodUnit  string
		asJSON      bool
	)

	flag.StringVar(&startDate, "start", "", "first sale date to include (YYYY-MM-DD)")
	flag.StringVar(&endDate, "end", "", "last sale date to include (YYYY-MM-DD)")
	flag.IntVar(&userID, "user", 0, "only include sales of this user id")
	flag.StringVar(&preset, "period", "", "prediction period preset (7d, 15d, 1m, 3m, 6m, 1y)")
	flag.IntVar(&periodValue, "period-value", 0, "prediction period length, overrides the configured default")
	flag.StringVar(&periodUnit, "period-unit", "", "prediction period unit (days, weeks, months, years)")
	flag.BoolVar(&asJSON, "json", false, "print the report state as JSON")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.SetOutput(os.Stderr)

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	if level, err := logrus.ParseLevel(cfg.App.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	filters, err := buildFilters(startDate, endDate, userID)
	if err != nil {
		logrus.WithError(err).Fatal("invalid filters")
	}

	period := domain.PredictionPeriod{Value: cfg.Report.PeriodValue, Unit: domain.PeriodUnit(cfg.Report.PeriodUnit)}
	if preset != "" {
		presetPeriod, ok := domain.PresetByKey(preset)
		if !ok {
			logrus.Fatalf("unknown period preset %q", preset)
		}
		period = presetPeriod
	}
	if periodValue > 0 {
		period.Value = periodValue
	}
	if periodUnit != "" {
		period.Unit = domain.PeriodUnit(periodUnit)
	}

	groupKey, err := domain.ParseUserGroupKey(cfg.Report.UserGroupKey)
	if err != nil {
		logrus.WithError(err).Fatal("invalid report user group key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := apiclient.NewSession()
	session.OnLogout(func() {
		logrus.Warn("session ended by the API, log in again")
	})

	// One http.Client serves both services; the forecast origin is excluded
	// from token handling.
	transport, err := apiclient.NewAuthTransport(session, http.DefaultTransport, cfg.Forecast.URL)
	if err != nil {
		logrus.WithError(err).Fatal("invalid forecast url")
	}
	httpClient := &http.Client{Transport: transport, Timeout: cfg.Forecast.Timeout}

	client, err := apiclient.NewClient(cfg.Client.BaseURL, session, httpClient)
	if err != nil {
		logrus.WithError(err).Fatal("invalid api base url")
	}

	if _, err := client.Login(ctx, cfg.Client.Email, cfg.Client.Password); err != nil {
		logrus.WithError(err).Fatal("login failed")
	}
	defer func() {
		if err := client.Logout(context.Background()); err != nil {
			logrus.WithError(err).Debug("logout failed")
		}
	}()

	orchestrator := reporting.NewOrchestrator(
		apiclient.NewRemoteSalesStore(client),
		forecast.New(forecastclient.NewClient(cfg.Forecast, httpClient)),
		groupKey,
	)

	state, err := orchestrator.Run(ctx, filters, period)
	if err != nil {
		logrus.WithError(err).Fatal("report failed")
	}

	if asJSON {
		out, err := utils.PrettyJson(state)
		if err != nil {
			logrus.WithError(err).Fatal("could not encode report")
		}
		fmt.Println(out)
	} else if err := render(os.Stdout, state); err != nil {
		logrus.WithError(err).Fatal("could not print report")
	}

	if state.Status == domain.ReportLoadFailed {
		os.Exit(1)
	}
}

func buildFilters(startDate, endDate string, userID int) (domain.SaleFilters, error) {
	var filters domain.SaleFilters

	start, err := utils.ParseDate(startDate)
	if err != nil {
		return filters, fmt.Errorf("start: %w", err)
	}
	end, err := utils.ParseDate(endDate)
	if err != nil {
		return filters, fmt.Errorf("end: %w", err)
	}

	filters.StartDate = start
	filters.EndDate = end
	if userID > 0 {
		filters.UserID = &userID
	}

	return filters, filters.Validate()
}
