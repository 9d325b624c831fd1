package handler

import (
	"net/http"

	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/middleware"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshResponse struct {
	Authorization any `json:"authorization"`
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Invalid request body", nil)
			return
		}

		if err := validate.Struct(req); err != nil {
			writeValidationError(w, err)
			return
		}

		result, err := service.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, result)
	}
}

func Logout(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())

		if err := service.Logout(r.Context(), claims); err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	}
}

func Refresh(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())

		token, err := service.Refresh(r.Context(), claims)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, RefreshResponse{Authorization: token})
	}
}

// GetMe returns the authenticated user.
func GetMe(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.ClaimsFromContext(r.Context())

		user, err := service.GetUser(r.Context(), claims.UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, UserResponse{User: user})
	}
}
