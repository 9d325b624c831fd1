package migration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/sales-tracker-api/pkg/log"
)

func init() {
	log.SetupTestLogger()
}

func TestCreateSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS sales`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_sales_sale_date`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_sales_user_id`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, CreateSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSchema_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnError(errors.New("permission denied"))

	err = CreateSchema(context.Background(), db)
	assert.ErrorContains(t, err, "permission denied")
}

func newTestSeeder(users, perUser int) *Seeder {
	seeder := NewSeeder(42)
	seeder.Users = users
	seeder.SalesPerUser = perUser
	seeder.HashCost = bcrypt.MinCost
	seeder.now = func() time.Time { return time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC) }
	return seeder
}

func TestSeeder_Seed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	for userID := 1; userID <= 2; userID++ {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(userID, now, now))
		for i := 0; i < 3; i++ {
			mock.ExpectQuery(`INSERT INTO sales`).
				WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), userID).
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(userID*10+i, now, now))
		}
	}

	result, err := newTestSeeder(2, 3).Seed(context.Background(), db)

	require.NoError(t, err)
	assert.Equal(t, SeedResult{Users: 2, Sales: 6}, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_SaleWithinRange(t *testing.T) {
	seeder := newTestSeeder(1, 1)
	now := seeder.now()

	for i := 0; i < 50; i++ {
		sale := seeder.sale(7)

		assert.Equal(t, 7, sale.UserID)
		assert.NotEmpty(t, sale.Client)
		assert.True(t, sale.TotalAmount.GreaterThanOrEqual(decimal.NewFromInt(minSaleAmount)), sale.TotalAmount.String())
		assert.True(t, sale.TotalAmount.LessThanOrEqual(decimal.NewFromInt(maxSaleAmount)), sale.TotalAmount.String())
		assert.LessOrEqual(t, sale.TotalAmount.Exponent(), int32(0))
		assert.GreaterOrEqual(t, sale.TotalAmount.Exponent(), int32(-2))
		assert.False(t, sale.SaleDate.After(now))
		assert.False(t, sale.SaleDate.Before(now.AddDate(0, -salesMonths, -1)))
	}
}

func TestSeeder_StopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("disk full"))

	result, err := newTestSeeder(2, 2).Seed(context.Background(), db)

	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, SeedResult{}, result)
}
