package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID          int             `json:"id"`
	Client      string          `json:"client"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SaleDate    time.Time       `json:"sale_date"`
	UserID      int             `json:"user_id"`
	User        *User           `json:"user,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type UpdateSaleRequest struct {
	ID          int
	Client      *string
	TotalAmount *decimal.Decimal
	SaleDate    *time.Time
	UserID      *int
}

// SaleFilters narrows a sales listing. Date bounds are inclusive.
type SaleFilters struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	UserID    *int       `json:"user_id,omitempty"`
}

// Active reports whether any filter is set.
func (f SaleFilters) Active() bool {
	return f.StartDate != nil || f.EndDate != nil || f.UserID != nil
}

func (f SaleFilters) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return NewError(ValidationErrorKind, "sale filters", ErrInvalidDateRange)
	}
	if f.UserID != nil && *f.UserID <= 0 {
		return NewError(ValidationErrorKind, "sale filters", ErrInvalidUserFilter)
	}
	return nil
}

// LatestSaleDate returns the most recent sale date in the set.
func LatestSaleDate(sales []*Sale) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, sale := range sales {
		if sale == nil {
			continue
		}
		if !found || sale.SaleDate.After(latest) {
			latest = sale.SaleDate
			found = true
		}
	}
	return latest, found
}

// SalesListing is a filtered set of sales together with its totals.
type SalesListing struct {
	Sales  []*Sale           `json:"sales"`
	Totals AggregationResult `json:"totals"`
}
