package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/salestrack/sales-tracker-api/infrastructure/database/postgres"
	"github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast"
	"github.com/salestrack/sales-tracker-api/infrastructure/integrator/forecast/forecastclient"
	"github.com/salestrack/sales-tracker-api/infrastructure/repository"
	"github.com/salestrack/sales-tracker-api/infrastructure/tokenstore"
	"github.com/salestrack/sales-tracker-api/internal/api"
	"github.com/salestrack/sales-tracker-api/internal/api/handler"
	"github.com/salestrack/sales-tracker-api/internal/config"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/scheduler"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/reporting"
	"github.com/salestrack/sales-tracker-api/internal/usecases/selling"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("invalid log level %q, using info", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("log level set to %s", logLevel)

	groupKey, err := domain.ParseUserGroupKey(cfg.Report.UserGroupKey)
	if err != nil {
		logrus.WithError(err).Fatal("invalid report user group key")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	blacklist, err := tokenstore.New(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("could not set up token blacklist")
	}

	userRepo := repository.NewUserRepository(pgConn)
	saleRepo := repository.NewSaleRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, blacklist, cfg)
	seller := selling.NewService(saleRepo, userRepo, groupKey)

	forecastClient := forecastclient.NewClient(cfg.Forecast, nil)
	forecastIntegrator := forecast.New(forecastClient)

	orchestrator := reporting.NewOrchestrator(saleRepo, forecastIntegrator, groupKey)
	views := reporting.NewViewRegistry(orchestrator)

	forecastRetrainService := scheduler.NewForecastRetrainService(orchestrator, cfg)
	reportViewSweepService := scheduler.NewReportViewSweepService(views, cfg)

	if err := forecastRetrainService.Start(ctx); err != nil {
		logrus.WithError(err).Error("could not start forecast retrain scheduler")
	}

	if err := reportViewSweepService.Start(ctx); err != nil {
		logrus.WithError(err).Error("could not start report view sweep scheduler")
	}

	server, err := api.New(
		cfg,
		authenticator,
		seller,
		orchestrator,
		views,
		handler.CronJobServices{
			ForecastRetrainService: forecastRetrainService,
			ReportViewSweepService: reportViewSweepService,
		},
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to PostgreSQL")
	}

	logrus.Info("connected to PostgreSQL")
	return conn
}
