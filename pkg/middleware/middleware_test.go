package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating"
	"github.com/salestrack/sales-tracker-api/internal/usecases/authenticating/mocks"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
)

func init() {
	log.SetupTestLogger()
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := ClaimsFromContext(r.Context()); ok {
			w.Header().Set("X-User", claims.UserName)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		header     string
		setup      func(m *mocks.MockAuthenticator)
		wantStatus int
		wantUser   string
	}{
		{
			name:       "public path skips validation",
			path:       "/v1/login",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "missing header",
			path:       "/v1/sales",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			path:       "/v1/sales",
			header:     "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "revoked token",
			path:   "/v1/sales",
			header: "Bearer revoked",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken(gomock.Any(), "revoked").
					Return(nil, authenticating.NewAuthError(authenticating.ErrRevokedToken, apiErrors.ErrRevokedToken, ""))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "valid token",
			path:   "/v1/sales",
			header: "Bearer good",
			setup: func(m *mocks.MockAuthenticator) {
				m.EXPECT().ValidateToken(gomock.Any(), "good").Return(&domain.Claims{UserID: 1, UserName: "Ana"}, nil)
			},
			wantStatus: http.StatusNoContent,
			wantUser:   "Ana",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			validator := mocks.NewMockAuthenticator(ctrl)
			if tt.setup != nil {
				tt.setup(validator)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(validator)(claimsEcho()).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User"))
		})
	}
}

func TestRequireUser(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireUser()(claimsEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCors(t *testing.T) {
	handler := Cors([]string{"http://localhost:3000"})(claimsEcho())

	t.Run("allowed origin preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/v1/sales", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin gets no cors headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/sales", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogPanicMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()

	LoggingMiddleware()(LogPanicMiddleware()(panicking)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLoggingMiddleware_CollectsAccessFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	validator := mocks.NewMockAuthenticator(ctrl)
	validator.EXPECT().ValidateToken(gomock.Any(), "good").Return(&domain.Claims{UserID: 7, UserName: "Ana"}, nil)

	var collected log.Fields
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddAccessLogFields(r.Context(), log.Fields{"view_id": "v1"})

		acc, ok := r.Context().Value(accessFieldsKey{}).(*accessFields)
		if assert.True(t, ok) {
			collected = acc.merge(log.Fields{})
		}
		w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/reports/views/v1", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()

	LoggingMiddleware()(AuthMiddleware(validator)(handler)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, log.Fields{"user_id": 7, "view_id": "v1"}, collected)
}

func TestAddAccessLogFields_WithoutLoggingMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	assert.NotPanics(t, func() {
		AddAccessLogFields(req.Context(), log.Fields{"view_id": "v1"})
	})
}

func TestLoggingResponseWriter_CountsBytes(t *testing.T) {
	lrw := newLoggingResponseWriter(httptest.NewRecorder())

	lrw.WriteHeader(http.StatusCreated)
	lrw.Write([]byte("hello"))
	lrw.Write([]byte(" world"))

	assert.Equal(t, http.StatusCreated, lrw.statusCode)
	assert.Equal(t, 11, lrw.written)
}
