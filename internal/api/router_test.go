package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"collection-engine/internal/config"
	"collection-engine/internal/domain/actor"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/domain/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubCustomers struct {
	customer.CustomerService
	gotActor   actor.Actor
	gotAccount string
}

func (s *stubCustomers) GetCustomer(_ context.Context, who actor.Actor, accountNumber string) (*customer.Customer, error) {
	s.gotActor, s.gotAccount = who, accountNumber
	return customer.NewCustomer("0038630092", customer.StatusOverdue), nil
}

type stubImports struct {
	importer.Service
	called bool
}

func (s *stubImports) MarkPaid(context.Context, actor.Actor, io.Reader, string) (*importer.Result, error) {
	s.called = true
	return &importer.Result{}, nil
}

func testConfig(authEnabled bool) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Auth: config.AuthConfig{Enabled: authEnabled, JWTSecret: "secret"},
		},
		Metrics: config.MetricsConfig{Path: "/metrics"},
		Import:  config.ImportConfig{MaxUploadBytes: 1 << 20},
	}
}

func newRouter(t *testing.T, db HealthChecker, authEnabled bool) (http.Handler, *stubImports, *stubCustomers) {
	t.Helper()
	imports, customers := &stubImports{}, &stubCustomers{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return SetupRouter(imports, customers, db, nil, testConfig(authEnabled), logger), imports, customers
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		router, _, _ := newRouter(t, stubPinger{}, true)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		router, _, _ := newRouter(t, stubPinger{err: errors.New("connection refused")}, true)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestAPIRoutesRequireToken(t *testing.T) {
	router, imports, _ := newRouter(t, nil, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/uploads/mark-paid", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, imports.called)
}

func TestCustomerRouteResolvesAccountNumber(t *testing.T) {
	router, _, customers := newRouter(t, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/customers/38630092", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "38630092", customers.gotAccount)
	assert.Equal(t, actor.System(), customers.gotActor)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := newRouter(t, nil, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	router, _, _ := newRouter(t, nil, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
