package authenticating

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/sales-tracker-api/infrastructure/repository"
	"github.com/salestrack/sales-tracker-api/infrastructure/repository/mocks"
	"github.com/salestrack/sales-tracker-api/infrastructure/tokenstore"
	"github.com/salestrack/sales-tracker-api/internal/config"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

func init() {
	log.SetupTestLogger()
}

func newTestService(t *testing.T) (*Service, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	userRepo := mocks.NewMockUserRepository(ctrl)
	cfg := &config.Config{SecretKey: "test-secret", Auth: config.Auth{TokenTTL: time.Hour}}
	return NewService(userRepo, tokenstore.NewInMemoryBlacklist(), cfg), userRepo
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func authCode(t *testing.T, err error) string {
	t.Helper()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	return authErr.Code
}

func TestLogin(t *testing.T) {
	service, userRepo := newTestService(t)
	user := &domain.User{ID: 7, Name: "Ana", Email: "ana@example.com", PasswordHash: hashed(t, "secret1")}

	userRepo.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(user, nil)

	result, err := service.Login(context.Background(), "  ANA@example.com ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, user, result.User)
	assert.Equal(t, "bearer", result.Authorization.Type)
	assert.Equal(t, int64(3600), result.Authorization.ExpiresIn)
	assert.NotEmpty(t, result.Authorization.Token)

	claims, err := service.ValidateToken(context.Background(), result.Authorization.Token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.Equal(t, "Ana", claims.UserName)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, repo *mocks.MockUserRepository)
	}{
		{
			name: "unknown email",
			setup: func(t *testing.T, repo *mocks.MockUserRepository) {
				repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, nil)
			},
		},
		{
			name: "wrong password",
			setup: func(t *testing.T, repo *mocks.MockUserRepository) {
				repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").
					Return(&domain.User{ID: 1, PasswordHash: hashed(t, "another")}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, userRepo := newTestService(t)
			tt.setup(t, userRepo)

			_, err := service.Login(context.Background(), "ghost@example.com", "secret1")

			require.Error(t, err)
			assert.True(t, IsCredentialsError(err))
			assert.Equal(t, apiErrors.ErrInvalidCredentials, authCode(t, err))
		})
	}
}

func TestLogin_MissingData(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Login(context.Background(), "", "")

	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestLogout_RevokesToken(t *testing.T) {
	service, userRepo := newTestService(t)
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: 3, Email: "bo@example.com", PasswordHash: hashed(t, "secret1")}, nil)

	result, err := service.Login(context.Background(), "bo@example.com", "secret1")
	require.NoError(t, err)

	claims, err := service.ValidateToken(context.Background(), result.Authorization.Token)
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), claims))

	_, err = service.ValidateToken(context.Background(), result.Authorization.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)
	assert.True(t, IsAuthorizationError(err))
}

func TestRefresh(t *testing.T) {
	service, userRepo := newTestService(t)
	user := &domain.User{ID: 3, Name: "Bo", Email: "bo@example.com", PasswordHash: hashed(t, "secret1")}
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(user, nil)
	userRepo.EXPECT().GetUserByID(gomock.Any(), 3).Return(user, nil)

	result, err := service.Login(context.Background(), "bo@example.com", "secret1")
	require.NoError(t, err)
	claims, err := service.ValidateToken(context.Background(), result.Authorization.Token)
	require.NoError(t, err)

	refreshed, err := service.Refresh(context.Background(), claims)
	require.NoError(t, err)
	assert.NotEqual(t, result.Authorization.Token, refreshed.Token)

	_, err = service.ValidateToken(context.Background(), result.Authorization.Token)
	assert.ErrorIs(t, err, ErrRevokedToken)

	newClaims, err := service.ValidateToken(context.Background(), refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, 3, newClaims.UserID)
}

func TestRefresh_DeletedUser(t *testing.T) {
	service, userRepo := newTestService(t)
	userRepo.EXPECT().GetUserByID(gomock.Any(), 9).Return(nil, nil)

	_, err := service.Refresh(context.Background(), &domain.Claims{UserID: 9})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateToken_Expired(t *testing.T) {
	service, userRepo := newTestService(t)
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: 1, PasswordHash: hashed(t, "secret1")}, nil)

	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return issued }
	result, err := service.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)

	service.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = service.ValidateToken(context.Background(), result.Authorization.Token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Equal(t, apiErrors.ErrExpiredToken, authCode(t, err))
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service, userRepo := newTestService(t)
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: 1, PasswordHash: hashed(t, "secret1")}, nil)

	result, err := service.Login(context.Background(), "a@example.com", "secret1")
	require.NoError(t, err)

	service.cfg = &config.Config{SecretKey: "other-secret"}
	_, err = service.ValidateToken(context.Background(), result.Authorization.Token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateUser(t *testing.T) {
	service, userRepo := newTestService(t)

	userRepo.EXPECT().GetUserByEmail(gomock.Any(), "new@example.com").Return(nil, nil)
	userRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, user *domain.User) (*domain.User, error) {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
			user.ID = 11
			return user, nil
		})

	user, err := service.CreateUser(context.Background(), &domain.User{Name: "New", Email: "New@Example.com"}, "secret1")

	require.NoError(t, err)
	assert.Equal(t, 11, user.ID)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestCreateUser_Errors(t *testing.T) {
	t.Run("duplicate email", func(t *testing.T) {
		service, userRepo := newTestService(t)
		userRepo.EXPECT().GetUserByEmail(gomock.Any(), "dup@example.com").Return(&domain.User{ID: 1}, nil)

		_, err := service.CreateUser(context.Background(), &domain.User{Name: "Dup", Email: "dup@example.com"}, "secret1")

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		assert.Equal(t, apiErrors.ErrUserAlreadyExists, authCode(t, err))
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		service, userRepo := newTestService(t)
		userRepo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, nil)
		userRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, repository.ErrEmailTaken)

		_, err := service.CreateUser(context.Background(), &domain.User{Name: "Dup", Email: "dup@example.com"}, "secret1")

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})

	t.Run("short password", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.CreateUser(context.Background(), &domain.User{Name: "A", Email: "a@example.com"}, "12345")

		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("missing fields", func(t *testing.T) {
		service, _ := newTestService(t)

		_, err := service.CreateUser(context.Background(), &domain.User{Email: "a@example.com"}, "secret1")

		assert.ErrorIs(t, err, ErrMissingRequiredData)
	})
}

func TestUpdateUser(t *testing.T) {
	service, userRepo := newTestService(t)
	name := "Renamed"
	email := "Taken@example.com"

	userRepo.EXPECT().GetUserByID(gomock.Any(), 5).Return(&domain.User{ID: 5, Name: "Old", Email: "old@example.com"}, nil)
	userRepo.EXPECT().GetUserByEmail(gomock.Any(), "taken@example.com").Return(&domain.User{ID: 6}, nil)

	_, err := service.UpdateUser(context.Background(), &domain.UpdateUserRequest{ID: 5, Name: &name, Email: &email})

	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestUpdateUser_Partial(t *testing.T) {
	service, userRepo := newTestService(t)
	name := "Renamed"

	userRepo.EXPECT().GetUserByID(gomock.Any(), 5).Return(&domain.User{ID: 5, Name: "Old", Email: "old@example.com"}, nil)
	userRepo.EXPECT().UpdateUser(gomock.Any(), &domain.User{ID: 5, Name: "Renamed", Email: "old@example.com"}).Return(nil)

	user, err := service.UpdateUser(context.Background(), &domain.UpdateUserRequest{ID: 5, Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
}

func TestDeleteUser(t *testing.T) {
	service, userRepo := newTestService(t)

	userRepo.EXPECT().DeleteUser(gomock.Any(), 1).Return(true, nil)
	userRepo.EXPECT().DeleteUser(gomock.Any(), 2).Return(false, nil)
	userRepo.EXPECT().DeleteUser(gomock.Any(), 3).Return(false, errors.New("boom"))

	assert.NoError(t, service.DeleteUser(context.Background(), 1))
	assert.ErrorIs(t, service.DeleteUser(context.Background(), 2), ErrUserNotFound)
	assert.Equal(t, apiErrors.ErrDatabaseOperation, authCode(t, service.DeleteUser(context.Background(), 3)))
}

func TestGetUser_NotFound(t *testing.T) {
	service, userRepo := newTestService(t)
	userRepo.EXPECT().GetUserByID(gomock.Any(), 42).Return(nil, nil)

	_, err := service.GetUser(context.Background(), 42)

	assert.Equal(t, apiErrors.ErrUserNotFound, authCode(t, err))
}
