package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/salestrack/sales-tracker-api/infrastructure/database/postgres"
	"github.com/salestrack/sales-tracker-api/infrastructure/migration"
	"github.com/salestrack/sales-tracker-api/internal/config"
)

func main() {
	var (
		schemaOnly bool
		seed       uint64
		users      int
		perUser    int
	)

	flag.BoolVar(&schemaOnly, "schema-only", false, "create the tables without seeding")
	flag.Uint64Var(&seed, "seed", 0, "random seed for the generated data (0 picks one)")
	flag.IntVar(&users, "users", migration.DefaultUsers, "number of users to create")
	flag.IntVar(&perUser, "sales-per-user", migration.DefaultSalesPerUser, "number of sales per user")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	logrus.Info("starting migration script")

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx := context.Background()

	conn, err := postgres.NewConnection(ctx, cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to PostgreSQL")
	}
	defer conn.Close()

	startTime := time.Now()

	if err := migration.CreateSchema(ctx, conn); err != nil {
		logrus.WithError(err).Fatal("schema creation failed")
	}
	logrus.Info("schema ready")

	if schemaOnly {
		return
	}

	seeder := migration.NewSeeder(seed)
	seeder.Users = users
	seeder.SalesPerUser = perUser

	var result migration.SeedResult
	err = conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		result, err = seeder.Seed(ctx, tx)
		return err
	})
	if err != nil {
		logrus.WithError(err).Fatal("seeding failed, nothing was inserted")
	}

	logrus.WithFields(logrus.Fields{
		"users":    result.Users,
		"sales":    result.Sales,
		"password": seeder.Password,
		"elapsed":  time.Since(startTime).String(),
	}).Info("database seeded")
}
