package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"collection-engine/internal/api/handler"
	mw "collection-engine/internal/api/middleware"
	"collection-engine/internal/config"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/domain/importer"

	_ "collection-engine/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

func SetupRouter(
	importService importer.Service,
	customerService customer.CustomerService,
	db HealthChecker,
	rateLimiter *mw.RateLimiterMiddleware,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, rateLimiter, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", healthHandler(db, logger))
	setupSwaggerEndpoint(router, logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		setupUploadRoutes(r, importService, cfg, logger)
		setupCustomerRoutes(r, customerService, logger)
	})

	return router
}

func setupMiddleware(router *chi.Mux, rateLimiter *mw.RateLimiterMiddleware, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(mw.RealIP(mw.NewProxyTrust(cfg.Server.TrustedProxies, logger)))
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5, "application/json"))
	router.Use(middleware.Timeout(60 * time.Second))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware)
	}
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func healthHandler(db HealthChecker, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.WarnContext(r.Context(), "Health check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func setupUploadRoutes(r chi.Router, svc importer.Service, cfg *config.Config, logger *slog.Logger) {
	h := handler.NewUploadHandler(svc, cfg.Import.MaxUploadBytes, logger)

	r.Route("/uploads", func(r chi.Router) {
		r.Post("/parse", h.ParseFile)
		r.Post("/import", h.ImportCustomers)
		r.Post("/import-file", h.ImportFile)
		r.Post("/mark-paid", h.MarkPaid)
	})
}

func setupCustomerRoutes(r chi.Router, svc customer.CustomerService, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/assign", h.AssignCustomers)
		r.Route("/{accountNumber}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Post("/responses", h.RecordResponse)
		})
	})
}
