package migration

import (
	"context"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/sales-tracker-api/infrastructure/database/postgres"
	"github.com/salestrack/sales-tracker-api/infrastructure/repository"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

const (
	DefaultUsers        = 5
	DefaultSalesPerUser = 5
	DefaultPassword     = "password"

	minSaleAmount = 100
	maxSaleAmount = 10000
	salesMonths   = 6
)

// Seeder fills an empty database with demo users and their sales.
type Seeder struct {
	Users        int
	SalesPerUser int
	Password     string
	HashCost     int

	faker *gofakeit.Faker
	now   func() time.Time
}

// NewSeeder returns a seeder with the default sizes. A zero seed picks a random one.
func NewSeeder(seed uint64) *Seeder {
	return &Seeder{
		Users:        DefaultUsers,
		SalesPerUser: DefaultSalesPerUser,
		Password:     DefaultPassword,
		HashCost:     bcrypt.DefaultCost,
		faker:        gofakeit.New(seed),
		now:          time.Now,
	}
}

// SeedResult counts the rows inserted by Seed.
type SeedResult struct {
	Users int
	Sales int
}

// Seed inserts the users, each with SalesPerUser sales dated within the last
// six months.
func (s *Seeder) Seed(ctx context.Context, conn postgres.Queryer) (SeedResult, error) {
	var result SeedResult

	users := repository.NewUserRepository(conn)
	sales := repository.NewSaleRepository(conn)

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), s.HashCost)
	if err != nil {
		return result, errors.Wrap(err, "hash seed password")
	}

	logger := log.ForContext(ctx)

	for i := 0; i < s.Users; i++ {
		user, err := users.CreateUser(ctx, &domain.User{
			Name:         s.faker.Name(),
			Email:        s.faker.Email(),
			PasswordHash: string(hash),
		})
		if err != nil {
			return result, errors.Wrapf(err, "seed user %d", i+1)
		}
		result.Users++

		for j := 0; j < s.SalesPerUser; j++ {
			if _, err := sales.CreateSale(ctx, s.sale(user.ID)); err != nil {
				return result, errors.Wrapf(err, "seed sale %d of user %d", j+1, user.ID)
			}
			result.Sales++
		}

		logger.WithFields(log.Fields{
			"user_id":     user.ID,
			"sales_count": s.SalesPerUser,
		}).Debug("seeded user")
	}

	return result, nil
}

func (s *Seeder) sale(userID int) *domain.Sale {
	now := s.now().UTC()
	saleDate := s.faker.DateRange(now.AddDate(0, -salesMonths, 0), now)

	return &domain.Sale{
		Client:      s.faker.Company(),
		TotalAmount: decimal.NewFromFloat(s.faker.Float64Range(minSaleAmount, maxSaleAmount)).Round(2),
		SaleDate:    time.Date(saleDate.Year(), saleDate.Month(), saleDate.Day(), 0, 0, 0, 0, time.UTC),
		UserID:      userID,
	}
}
