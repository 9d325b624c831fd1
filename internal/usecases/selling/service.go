package selling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/salestrack/sales-tracker-api/infrastructure/repository"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

const MaxClientLength = 255

type Seller interface {
	CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error)
	UpdateSale(ctx context.Context, req *domain.UpdateSaleRequest) (*domain.Sale, error)
	DeleteSale(ctx context.Context, saleID int) error
	GetSale(ctx context.Context, saleID int) (*domain.Sale, error)
	ListSales(ctx context.Context, filters domain.SaleFilters) (*domain.SalesListing, error)
}

var _ Seller = (*Service)(nil)

type Service struct {
	saleRepo repository.SaleRepository
	userRepo repository.UserRepository
	groupKey domain.UserGroupKey
}

func NewService(saleRepo repository.SaleRepository, userRepo repository.UserRepository, groupKey domain.UserGroupKey) *Service {
	return &Service{
		saleRepo: saleRepo,
		userRepo: userRepo,
		groupKey: groupKey,
	}
}

func (s *Service) CreateSale(ctx context.Context, sale *domain.Sale) (*domain.Sale, error) {
	sale.Client = strings.TrimSpace(sale.Client)
	if err := validateClient(sale.Client); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrValidationFailed, 0, "")
	}
	if sale.TotalAmount.IsNegative() {
		return nil, NewSaleError(ErrNegativeAmount, apiErrors.ErrValidationFailed, 0, "")
	}
	if sale.SaleDate.IsZero() {
		return nil, NewSaleError(ErrSaleDateRequired, apiErrors.ErrValidationFailed, 0, "")
	}
	sale.TotalAmount = utils.RoundMoney(sale.TotalAmount)

	user, err := s.findUser(ctx, sale.UserID, 0)
	if err != nil {
		return nil, err
	}

	created, err := s.saleRepo.CreateSale(ctx, sale)
	if err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			return nil, NewSaleError(ErrSaleUserNotFound, apiErrors.ErrSaleUserNotFound, 0, fmt.Sprintf("user %d", sale.UserID))
		}
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, 0, "failed to create sale")
	}
	created.User = user

	log.ForContext(ctx).WithFields(log.Fields{
		"sale_id": created.ID,
		"user_id": created.UserID,
	}).Info("sale created")

	return created, nil
}

func (s *Service) UpdateSale(ctx context.Context, req *domain.UpdateSaleRequest) (*domain.Sale, error) {
	sale, err := s.GetSale(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Client != nil {
		client := strings.TrimSpace(*req.Client)
		if err := validateClient(client); err != nil {
			return nil, NewSaleError(err, apiErrors.ErrValidationFailed, req.ID, "")
		}
		sale.Client = client
	}

	if req.TotalAmount != nil {
		if req.TotalAmount.IsNegative() {
			return nil, NewSaleError(ErrNegativeAmount, apiErrors.ErrValidationFailed, req.ID, "")
		}
		sale.TotalAmount = utils.RoundMoney(*req.TotalAmount)
	}

	if req.SaleDate != nil {
		sale.SaleDate = *req.SaleDate
	}

	if req.UserID != nil && *req.UserID != sale.UserID {
		user, err := s.findUser(ctx, *req.UserID, req.ID)
		if err != nil {
			return nil, err
		}
		sale.UserID = user.ID
		sale.User = user
	}

	if err := s.saleRepo.UpdateSale(ctx, sale); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, NewSaleError(ErrSaleNotFound, apiErrors.ErrSaleNotFound, req.ID, "")
		case errors.Is(err, repository.ErrUnknownUser):
			return nil, NewSaleError(ErrSaleUserNotFound, apiErrors.ErrSaleUserNotFound, req.ID, "")
		}
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, req.ID, "failed to update sale")
	}

	return sale, nil
}

func (s *Service) DeleteSale(ctx context.Context, saleID int) error {
	deleted, err := s.saleRepo.DeleteSale(ctx, saleID)
	if err != nil {
		return NewSaleError(err, apiErrors.ErrDatabaseOperation, saleID, "failed to delete sale")
	}
	if !deleted {
		return NewSaleError(ErrSaleNotFound, apiErrors.ErrSaleNotFound, saleID, "")
	}

	log.ForContext(ctx).WithField("sale_id", saleID).Info("sale deleted")
	return nil
}

func (s *Service) GetSale(ctx context.Context, saleID int) (*domain.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(ctx, saleID)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, saleID, "failed to load sale")
	}
	if sale == nil {
		return nil, NewSaleError(ErrSaleNotFound, apiErrors.ErrSaleNotFound, saleID, "")
	}

	return sale, nil
}

// ListSales returns the filtered sales with their totals. The user_id filter
// doubles as the focus user of the per-user breakdown.
func (s *Service) ListSales(ctx context.Context, filters domain.SaleFilters) (*domain.SalesListing, error) {
	if err := filters.Validate(); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrInvalidRequest, 0, "")
	}

	sales, err := s.saleRepo.ListSales(ctx, filters)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, 0, "failed to list sales")
	}

	return &domain.SalesListing{
		Sales:  sales,
		Totals: domain.AggregateSales(sales, filters.UserID, s.groupKey),
	}, nil
}

func (s *Service) findUser(ctx context.Context, userID int, saleID int) (*domain.User, error) {
	if userID <= 0 {
		return nil, NewSaleError(ErrSaleUserNotFound, apiErrors.ErrSaleUserNotFound, saleID, "user_id is required")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, saleID, "failed to load user")
	}
	if user == nil {
		return nil, NewSaleError(ErrSaleUserNotFound, apiErrors.ErrSaleUserNotFound, saleID, fmt.Sprintf("user %d", userID))
	}

	return user, nil
}

func validateClient(client string) error {
	if client == "" {
		return ErrClientRequired
	}
	if utf8.RuneCountInString(client) > MaxClientLength {
		return ErrClientTooLong
	}
	return nil
}
