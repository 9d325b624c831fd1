package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating/mocks"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
)

func TestListUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().ListUsers(gomock.Any()).Return([]*domain.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bo"}}, nil)

	rec := serve(t, User(service), testClaims(), http.MethodGet, "/v1/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body UsersResponse
	decodeBody(t, rec, &body)
	require.Len(t, body.Users, 2)
	assert.Equal(t, "Bo", body.Users[1].Name)
}

func TestCreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().
		CreateUser(gomock.Any(), &domain.User{Name: "Ana", Email: "ana@example.com"}, "secret1").
		Return(&domain.User{ID: 3, Name: "Ana", Email: "ana@example.com"}, nil)

	rec := serve(t, User(service), testClaims(), http.MethodPost, "/v1/users",
		`{"name":"Ana","email":"ana@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body UserResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, 3, body.User.ID)
}

func TestCreateUser_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	rec := serve(t, User(service), testClaims(), http.MethodPost, "/v1/users",
		`{"name":"","email":"ana@example.com","password":"123"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	details := decodeError(t, rec).Details.(map[string]any)
	assert.Equal(t, "is required", details["name"])
	assert.Equal(t, "must be at least 6 characters", details["password"])
	assert.NotContains(t, details, "email")
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, authenticating.NewAuthError(authenticating.ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, ""))

	rec := serve(t, User(service), testClaims(), http.MethodPost, "/v1/users",
		`{"name":"Ana","email":"ana@example.com","password":"secret1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrUserAlreadyExists, decodeError(t, rec).Code)
}

func TestUpdateUser_Partial(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *domain.UpdateUserRequest) (*domain.User, error) {
			assert.Equal(t, 7, req.ID)
			require.NotNil(t, req.Name)
			assert.Equal(t, "Renamed", *req.Name)
			assert.Nil(t, req.Email)
			assert.Nil(t, req.Password)
			return &domain.User{ID: 7, Name: "Renamed"}, nil
		})

	rec := serve(t, User(service), testClaims(), http.MethodPut, "/v1/users/7", `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUserByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	service := mocks.NewMockAuthenticator(ctrl)

	service.EXPECT().GetUser(gomock.Any(), 9).
		Return(nil, authenticating.NewUserAuthError(authenticating.ErrUserNotFound, apiErrors.ErrUserNotFound, 9, ""))
	service.EXPECT().DeleteUser(gomock.Any(), 4).Return(nil)

	rec := serve(t, User(service), testClaims(), http.MethodGet, "/v1/users/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, User(service), testClaims(), http.MethodDelete, "/v1/users/4", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(t, User(service), testClaims(), http.MethodGet, "/v1/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidFormat, decodeError(t, rec).Code)
}
