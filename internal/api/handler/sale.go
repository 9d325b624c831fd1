package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/selling"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/utils"
)

type CreateSaleRequest struct {
	Client      string           `json:"client" validate:"required,max=255"`
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"required,gte=0"`
	SaleDate    string           `json:"sale_date" validate:"required,datetime=2006-01-02"`
	UserID      int              `json:"user_id" validate:"required,gt=0"`
}

type UpdateSaleRequest struct {
	Client      *string          `json:"client" validate:"omitempty,min=1,max=255"`
	TotalAmount *decimal.Decimal `json:"total_amount" validate:"omitempty,gte=0"`
	SaleDate    *string          `json:"sale_date" validate:"omitempty,datetime=2006-01-02"`
	UserID      *int             `json:"user_id" validate:"omitempty,gt=0"`
}

type SaleResponse struct {
	Sale *domain.Sale `json:"sale"`
}

func ListSales(service selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, details := saleFiltersFromQuery(r)
		if len(details) > 0 {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid sale filters", details)
			return
		}

		listing, err := service.ListSales(r.Context(), filters)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, listing)
	}
}

func GetSale(service selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid sale id", nil)
			return
		}

		sale, err := service.GetSale(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, SaleResponse{Sale: sale})
	}
}

func CreateSale(service selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateSaleRequest
		if err := decodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request body", nil)
			return
		}

		if err := validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		// datetime has already been checked by the validator
		saleDate, _ := time.Parse(dateLayout, req.SaleDate)

		sale, err := service.CreateSale(r.Context(), &domain.Sale{
			Client:      req.Client,
			TotalAmount: *req.TotalAmount,
			SaleDate:    saleDate,
			UserID:      req.UserID,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, SaleResponse{Sale: sale})
	}
}

func UpdateSale(service selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid sale id", nil)
			return
		}

		var req UpdateSaleRequest
		if err := decodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request body", nil)
			return
		}

		if err := validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		update := &domain.UpdateSaleRequest{
			ID:          id,
			Client:      req.Client,
			TotalAmount: req.TotalAmount,
			UserID:      req.UserID,
		}
		if req.SaleDate != nil {
			saleDate, _ := time.Parse(dateLayout, *req.SaleDate)
			update.SaleDate = &saleDate
		}

		sale, err := service.UpdateSale(r.Context(), update)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, SaleResponse{Sale: sale})
	}
}

func DeleteSale(service selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Invalid sale id", nil)
			return
		}

		if err := service.DeleteSale(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// saleFiltersFromQuery reads start_date, end_date and user_id. Malformed
// values are reported per parameter.
func saleFiltersFromQuery(r *http.Request) (domain.SaleFilters, map[string]string) {
	query := r.URL.Query()
	details := map[string]string{}

	var filters domain.SaleFilters

	if value := query.Get("start_date"); value != "" {
		date, err := utils.ParseDate(value)
		if err != nil {
			details["start_date"] = "must be a date in YYYY-MM-DD format"
		}
		filters.StartDate = date
	}

	if value := query.Get("end_date"); value != "" {
		date, err := utils.ParseDate(value)
		if err != nil {
			details["end_date"] = "must be a date in YYYY-MM-DD format"
		}
		filters.EndDate = date
	}

	if value := query.Get("user_id"); value != "" {
		userID, err := strconv.Atoi(value)
		if err != nil || userID <= 0 {
			details["user_id"] = "must be a positive integer"
		} else {
			filters.UserID = &userID
		}
	}

	return filters, details
}
