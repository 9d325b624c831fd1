package authenticating

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/salestrack/sales-tracker-api/infrastructure/repository"
	"github.com/salestrack/sales-tracker-api/infrastructure/tokenstore"
	"github.com/salestrack/sales-tracker-api/internal/config"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

const (
	MinPasswordLength = 6
	defaultTokenTTL   = 24 * time.Hour
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	Logout(ctx context.Context, claims *domain.Claims) error
	Refresh(ctx context.Context, claims *domain.Claims) (*domain.AuthToken, error)
	ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error)
	CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error)
	UpdateUser(ctx context.Context, req *domain.UpdateUserRequest) (*domain.User, error)
	DeleteUser(ctx context.Context, userID int) error
	GetUser(ctx context.Context, userID int) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

var _ Authenticator = (*Service)(nil)

type Service struct {
	userRepo  repository.UserRepository
	blacklist tokenstore.Blacklist
	cfg       *config.Config
	now       func() time.Time
}

func NewService(userRepo repository.UserRepository, blacklist tokenstore.Blacklist, cfg *config.Config) *Service {
	return &Service{
		userRepo:  userRepo,
		blacklist: blacklist,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *Service) tokenTTL() time.Duration {
	if s.cfg.Auth.TokenTTL <= 0 {
		return defaultTokenTTL
	}
	return s.cfg.Auth.TokenTTL
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	if email == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "email and password are required")
	}

	email = handleEmail(email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "failed to load user")
	}

	// Unknown email and wrong password look the same to the caller.
	if user == nil {
		return nil, NewAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, NewUserAuthError(ErrInvalidCredentials, apiErrors.ErrInvalidCredentials, user.ID, "")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, user.ID, "failed to sign token")
	}

	log.ForContext(ctx).WithField("user_id", user.ID).Info("user logged in")

	return &domain.LoginResult{
		User:          user,
		Authorization: *token,
	}, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, claims *domain.Claims) error {
	if claims == nil {
		return NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "missing claims")
	}

	if err := s.revoke(ctx, claims); err != nil {
		return NewUserAuthError(err, apiErrors.ErrInternalServer, claims.UserID, "failed to revoke token")
	}

	return nil
}

// Refresh issues a new token for the claims' user and revokes the old one.
func (s *Service) Refresh(ctx context.Context, claims *domain.Claims) (*domain.AuthToken, error) {
	if claims == nil {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "missing claims")
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, claims.UserID, "failed to load user")
	}
	if user == nil {
		return nil, NewUserAuthError(ErrUserNotFound, apiErrors.ErrInvalidToken, claims.UserID, "user no longer exists")
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, user.ID, "failed to sign token")
	}

	if err := s.revoke(ctx, claims); err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, user.ID, "failed to revoke token")
	}

	return token, nil
}

func (s *Service) revoke(ctx context.Context, claims *domain.Claims) error {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time.Sub(s.now()))
}

func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrExpiredToken, apiErrors.ErrExpiredToken, "")
		}
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, NewAuthError(ErrInvalidToken, apiErrors.ErrInvalidToken, "")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrInternalServer, claims.UserID, "failed to check token revocation")
	}
	if revoked {
		return nil, NewUserAuthError(ErrRevokedToken, apiErrors.ErrRevokedToken, claims.UserID, "")
	}

	return claims, nil
}

func (s *Service) generateJWT(user *domain.User) (*domain.AuthToken, error) {
	now := s.now()
	ttl := s.tokenTTL()
	expiresAt := now.Add(ttl)

	claims := domain.Claims{
		UserID:    user.ID,
		UserName:  user.Name,
		UserEmail: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	return &domain.AuthToken{
		Token:     signed,
		Type:      domain.TokenTypeBearer,
		ExpiresIn: int64(ttl / time.Second),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) CreateUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if user.Email == "" || user.Name == "" || password == "" {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "name, email and password are required")
	}

	if err := ValidatePasswordStrength(password); err != nil {
		return nil, NewAuthError(err, apiErrors.ErrValidationFailed, "")
	}

	user.Email = handleEmail(user.Email)

	existing, err := s.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "failed to check email")
	}
	if existing != nil {
		return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hashedPassword)

	created, err := s.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, NewAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, "email already registered")
		}
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "failed to create user")
	}

	return created, nil
}

func (s *Service) UpdateUser(ctx context.Context, req *domain.UpdateUserRequest) (*domain.User, error) {
	if req.ID == 0 {
		return nil, NewAuthError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "id is required")
	}

	user, err := s.userRepo.GetUserByID(ctx, req.ID)
	if err != nil {
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, req.ID, "failed to load user")
	}
	if user == nil {
		return nil, NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, req.ID, "")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}

	if req.Email != nil {
		email := handleEmail(*req.Email)
		if email != user.Email {
			existing, err := s.userRepo.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, req.ID, "failed to check email")
			}
			if existing != nil && existing.ID != user.ID {
				return nil, NewUserAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, req.ID, "email already registered")
			}
		}
		user.Email = email
	}

	if req.Password != nil {
		if err := ValidatePasswordStrength(*req.Password); err != nil {
			return nil, NewUserAuthError(err, apiErrors.ErrValidationFailed, req.ID, "")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, NewUserAuthError(ErrUserAlreadyExists, apiErrors.ErrUserAlreadyExists, req.ID, "email already registered")
		}
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, req.ID, "failed to update user")
	}

	return user, nil
}

// DeleteUser removes the user. Their sales go with them.
func (s *Service) DeleteUser(ctx context.Context, userID int) error {
	deleted, err := s.userRepo.DeleteUser(ctx, userID)
	if err != nil {
		return NewUserAuthError(err, apiErrors.ErrDatabaseOperation, userID, "failed to delete user")
	}
	if !deleted {
		return NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, userID, "")
	}

	log.ForContext(ctx).WithField("user_id", userID).Info("user deleted")
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("failed to load user")
		return nil, NewUserAuthError(err, apiErrors.ErrDatabaseOperation, userID, "failed to load user")
	}
	if user == nil {
		return nil, NewUserAuthError(ErrUserNotFound, apiErrors.ErrUserNotFound, userID, "")
	}

	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, NewAuthError(err, apiErrors.ErrDatabaseOperation, "failed to list users")
	}

	return users, nil
}

func ValidatePasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func handleEmail(s string) string {
	email := strings.ToLower(s)
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, " ", "")
	return email
}
