package handler

import (
	"errors"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/julienschmidt/httprouter"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/selling"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("failed to encode response")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID reads a positive integer route parameter.
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(httprouter.ParamsFromContext(r.Context()).ByName(name))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps usecase errors onto API error codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.ForContext(r.Context()).WithError(err)

	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		logServiceError(logger, authErr.Code)
		apiErrors.WriteError(w, authErr.Code, authErr.Error(), nil)
		return
	}

	var saleErr *selling.SaleError
	if errors.As(err, &saleErr) {
		logServiceError(logger, saleErr.Code)
		apiErrors.WriteError(w, saleErr.Code, saleErr.Error(), nil)
		return
	}

	switch domain.KindOf(err) {
	case domain.ValidationErrorKind:
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, err.Error(), nil)
	case domain.FetchErrorKind:
		logger.Warn("report fetch failed")
		apiErrors.WriteError(w, apiErrors.ErrReportFetch, domain.FetchErrorKind.Message(), nil)
	default:
		logger.Error("unexpected error")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Internal server error", nil)
	}
}

func logServiceError(logger log.Logger, code string) {
	if apiErrors.StatusFor(code) >= http.StatusInternalServerError {
		logger.Error("request failed")
		return
	}
	logger.Debug("request rejected")
}
