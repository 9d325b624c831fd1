package migration

import (
	"context"

	"github.com/pkg/errors"

	"github.com/salestrack/sales-tracker-api/infrastructure/database/postgres"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales (
		id SERIAL PRIMARY KEY,
		client VARCHAR(255) NOT NULL,
		total_amount NUMERIC(12, 2) NOT NULL CHECK (total_amount >= 0),
		sale_date DATE NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_sale_date ON sales (sale_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user_id ON sales (user_id)`,
}

// CreateSchema creates the users and sales tables. It can run repeatedly.
func CreateSchema(ctx context.Context, conn postgres.Queryer) error {
	for _, statement := range schemaStatements {
		if _, err := conn.ExecContext(ctx, statement); err != nil {
			return errors.Wrap(err, "create schema")
		}
	}
	return nil
}
