package selling

import (
	"errors"
	"fmt"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleUserNotFound  = errors.New("sale user not found")
	ErrClientRequired    = errors.New("client is required")
	ErrClientTooLong     = errors.New("client must be at most 255 characters")
	ErrNegativeAmount    = errors.New("total amount must not be negative")
	ErrSaleDateRequired  = errors.New("sale date is required")
	ErrDatabaseOperation = errors.New("database operation error")
)

// SaleError carries the API error code and sale context of a failure.
type SaleError struct {
	Err     error
	Code    string
	SaleID  int
	Details string
}

func (e *SaleError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

func NewSaleError(err error, code string, saleID int, details string) *SaleError {
	return &SaleError{
		Err:     err,
		Code:    code,
		SaleID:  saleID,
		Details: details,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound)
}
