package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salestrack/sales-tracker-api/internal/api/handler/router"
	"github.com/salestrack/sales-tracker-api/internal/domain"
	"github.com/salestrack/sales-tracker-api/pkg/apiErrors"
	"github.com/salestrack/sales-tracker-api/pkg/log"
	"github.com/salestrack/sales-tracker-api/pkg/middleware"
)

func init() {
	log.SetupTestLogger()
}

// serve routes a request through a router built from routes. A non-nil
// claims value is placed in the context the way the auth middleware does.
func serve(t *testing.T, routes []router.Route, claims *domain.Claims, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serveContext(t, context.Background(), routes, claims, method, target, body)
}

func serveContext(t *testing.T, ctx context.Context, routes []router.Route, claims *domain.Claims, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	rt := router.New(router.WithRoutes(routes...))

	req := httptest.NewRequestWithContext(ctx, method, target, strings.NewReader(body))
	if claims != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.ContextKeyUser, claims))
	}

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiErrors.APIError {
	t.Helper()
	var apiErr apiErrors.APIError
	decodeBody(t, rec, &apiErr)
	return apiErr
}

func testClaims() *domain.Claims {
	return &domain.Claims{UserID: 1, UserName: "Ana", UserEmail: "ana@example.com"}
}

func TestRouter_NotFound(t *testing.T) {
	rec := serve(t, Healthcheck(), nil, http.MethodGet, "/nope", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, apiErrors.ErrRouteNotFound, decodeError(t, rec).Code)
}

func TestHealthcheck(t *testing.T) {
	rec := serve(t, Healthcheck(), nil, http.MethodGet, "/healthcheck", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())
}

func TestRequireUser_RejectsAnonymous(t *testing.T) {
	rec := serve(t, CronJobs(CronJobServices{}), nil, http.MethodGet, "/v1/cron/status", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, apiErrors.ErrInvalidToken, decodeError(t, rec).Code)
}
