package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating/mocks"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
)

func TestLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	result := &domain.LoginResult{
		User: &domain.User{ID: 1, Name: "Ana", Email: "ana@example.com"},
		Authorization: domain.AuthToken{
			Token:     "signed",
			Type:      domain.TokenTypeBearer,
			ExpiresIn: 3600,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	service.EXPECT().Login(gomock.Any(), "ana@example.com", "secret").Return(result, nil)

	rec := serve(t, Authentication(service), nil, http.MethodPost, "/v1/login",
		`{"email":"ana@example.com","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "ana@example.com", body["user"]["email"])
	assert.Equal(t, "signed", body["authorization"]["token"])
	assert.Equal(t, "bearer", body["authorization"]["type"])
	assert.Equal(t, float64(3600), body["authorization"]["expires_in"])
	assert.NotContains(t, body["user"], "password_hash")
}

func TestLogin_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	rec := serve(t, Authentication(service), nil, http.MethodPost, "/v1/login", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	apiErr := decodeError(t, rec)
	assert.Equal(t, apiErrors.ErrValidationFailed, apiErr.Code)
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, authenticating.NewAuthError(authenticating.ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, ""))

	rec := serve(t, Authentication(service), nil, http.MethodPost, "/v1/login",
		`{"email":"ana@example.com","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidCredentials, decodeError(t, rec).Code)
}

func TestLogoutAndRefresh(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)
	claims := testClaims()

	service.EXPECT().Logout(gomock.Any(), claims).Return(nil)
	service.EXPECT().Refresh(gomock.Any(), claims).Return(&domain.AuthToken{Token: "fresh", Type: domain.TokenTypeBearer, ExpiresIn: 60}, nil)

	rec := serve(t, Authentication(service), claims, http.MethodPost, "/v1/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, Authentication(service), claims, http.MethodPost, "/v1/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "fresh", body["authorization"]["token"])
}

func TestGetMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().GetUser(gomock.Any(), 1).Return(&domain.User{ID: 1, Name: "Ana"}, nil)

	rec := serve(t, Authentication(service), testClaims(), http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body UserResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, "Ana", body.User.Name)
}
