package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collection-engine/internal/api"
	"collection-engine/internal/api/middleware"
	"collection-engine/internal/batch"
	"collection-engine/internal/config"
	"collection-engine/internal/domain/customer"
	"collection-engine/internal/domain/importer"
	"collection-engine/internal/event"
	"collection-engine/internal/infrastructure/database/postgres"
	"collection-engine/internal/infrastructure/logging"
	"collection-engine/internal/infrastructure/spreadsheet"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	defaultAgingSchedule = "0 2 1 * *"
	amqpDialAttempts     = 5
	cronStopTimeout      = 15 * time.Second
	serverStopTimeout    = 20 * time.Second
)

// @title Collection Engine API
// @version 1.0
// @description Imports arrears spreadsheets, reconciles payment files and tracks debt collection callers.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Ignoring unreadable .env file", "error", err)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Collection engine starting", "config_source", viper.ConfigFileUsed())

	app, err := newApplication(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Startup failed", slog.Any("error", err))
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	if err := app.run(stop); err != nil {
		logger.Error("Collection engine stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// application owns every long-lived resource. close releases them in reverse order of creation.
type application struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	amqpConn *amqp.Connection
	redis    *redis.Client
	limiter  *middleware.RateLimiterMiddleware
	cron     *cron.Cron
	server   *http.Server
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	app.pool = pool

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := postgres.Migrate(migrateCtx, pool, logger)
		cancel()
		if err != nil {
			app.close()
			return nil, err
		}
	}

	columns, err := loadColumns(cfg.Import.ColumnsFile, logger)
	if err != nil {
		app.close()
		return nil, err
	}

	app.redis, err = connectRedis(ctx, cfg.Redis, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.amqpConn = connectBroker(cfg.RabbitMQ, logger)
	app.limiter = middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, app.redis, logger)

	customerRepo := postgres.NewCustomerRepository(pool, logger)
	customerService := customer.NewCustomerService(customerRepo, cfg.Import.AccountNumberWidth, logger)
	importService := importer.NewImportService(
		customerRepo,
		spreadsheet.NewDecoder(cfg.Import.MaxUploadBytes),
		newPublisher(cfg.RabbitMQ, app.amqpConn, logger),
		importer.Options{
			AccountNumberWidth: cfg.Import.AccountNumberWidth,
			PreviewRowLimit:    cfg.Import.PreviewRowLimit,
			AllowedRoles:       cfg.Import.AllowedRoles,
			Columns:            columns,
		},
		logger,
	)

	app.cron = scheduleAging(cfg.Batch, batch.NewAgingJob(customerRepo, cfg.Batch.AgingTimeout, logger), logger)
	app.server = newServer(cfg.Server, api.SetupRouter(importService, customerService, pool, app.limiter, cfg, logger), logger)
	return app, nil
}

// run serves until a signal arrives or the listener fails, then shuts everything down.
func (a *application) run(stop <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	var runErr error
	select {
	case sig := <-stop:
		a.logger.Info("Shutdown requested", "signal", sig.String())
	case runErr = <-serveErr:
		a.logger.Error("HTTP server exited", slog.Any("error", runErr))
	}

	a.shutdown()
	return runErr
}

func (a *application) shutdown() {
	if a.cron != nil {
		select {
		case <-a.cron.Stop().Done():
			a.logger.Info("Batch scheduler stopped")
		case <-time.After(cronStopTimeout):
			a.logger.Warn("Batch scheduler did not stop in time; a job may still be running")
		}
	}

	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), serverStopTimeout)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error("Graceful HTTP shutdown failed, closing connections", slog.Any("error", err))
			_ = a.server.Close()
		}
	}

	a.close()
	a.logger.Info("Collection engine stopped")
}

func (a *application) close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("Closing RabbitMQ connection failed", slog.Any("error", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Closing Redis client failed", slog.Any("error", err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func newServer(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

func loadColumns(path string, logger *slog.Logger) (*importer.ColumnSet, error) {
	if path == "" {
		return importer.DefaultColumnSet(), nil
	}
	cols, err := importer.LoadColumnSet(path)
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded spreadsheet column spellings", "path", path)
	return cols, nil
}

// scheduleAging returns nil when aging is switched off. An invalid schedule is logged and the
// scheduler starts without the job so the API still comes up.
func scheduleAging(cfg config.BatchConfig, job *batch.AgingJob, logger *slog.Logger) *cron.Cron {
	if !cfg.AgingEnabled {
		logger.Info("Arrears aging disabled")
		return nil
	}

	spec := cfg.AgingSchedule
	if spec == "" {
		spec = defaultAgingSchedule
	}

	c := cron.New()
	id, err := c.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			logger.Error("Arrears aging failed", "schedule", spec, slog.Any("error", err))
		}
	})
	if err != nil {
		logger.Error("Invalid aging schedule, job not registered", "schedule", spec, slog.Any("error", err))
	} else {
		logger.Info("Arrears aging scheduled", "schedule", spec, "entry", id)
	}

	c.Start()
	return c
}

// connectRedis returns a nil client when Redis is disabled; the rate limiter then keeps
// its buckets in process.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis is enabled but redis.addr is empty")
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis connected", "addr", cfg.Addr, "db", cfg.DB)
	return client, nil
}

func brokerURI(cfg config.RabbitMQConfig) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("RabbitMQ host is not configured")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return "", fmt.Errorf("RabbitMQ username and password must be provided together")
	}

	port := cfg.Port
	if port == 0 {
		port = 5672
	}
	if cfg.Username != "" {
		return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.Username, cfg.Password, cfg.Host, port), nil
	}
	return fmt.Sprintf("amqp://%s:%d/", cfg.Host, port), nil
}

// connectBroker returns nil when RabbitMQ is disabled or unreachable. Imports keep working
// without events.
func connectBroker(cfg config.RabbitMQConfig, logger *slog.Logger) *amqp.Connection {
	if !cfg.Enabled {
		logger.Info("RabbitMQ disabled, import events will not be published")
		return nil
	}

	uri, err := brokerURI(cfg)
	if err != nil {
		logger.Error("Invalid RabbitMQ configuration, events disabled", slog.Any("error", err))
		return nil
	}

	for attempt := 1; attempt <= amqpDialAttempts; attempt++ {
		conn, err := amqp.Dial(uri)
		if err == nil {
			go watchBroker(conn, logger)
			logger.Info("RabbitMQ connected", "host", cfg.Host)
			return conn
		}
		logger.Warn("RabbitMQ dial failed", "attempt", attempt, "max_attempts", amqpDialAttempts, slog.Any("error", err))
		time.Sleep(time.Duration(attempt*2) * time.Second)
	}

	logger.Error("RabbitMQ unreachable, events disabled", "host", cfg.Host)
	return nil
}

func watchBroker(conn *amqp.Connection, logger *slog.Logger) {
	drainBrokerNotifications(
		conn.NotifyBlocked(make(chan amqp.Blocking, 1)),
		conn.NotifyClose(make(chan *amqp.Error, 1)),
		logger,
	)
}

// drainBrokerNotifications keeps reading both channels until the close channel is closed.
// The connection's reader goroutine blocks on any listener that stops receiving.
func drainBrokerNotifications(blocked <-chan amqp.Blocking, closed <-chan *amqp.Error, logger *slog.Logger) {
	for {
		select {
		case b, ok := <-blocked:
			if !ok {
				blocked = nil
				continue
			}
			if b.Active {
				logger.Warn("RabbitMQ connection blocked", "reason", b.Reason)
			} else {
				logger.Info("RabbitMQ connection unblocked")
			}
		case e, ok := <-closed:
			if !ok {
				logger.Info("RabbitMQ connection closed")
				return
			}
			if e != nil {
				logger.Error("RabbitMQ connection lost", slog.Any("error", e))
			}
		}
	}
}

func newPublisher(cfg config.RabbitMQConfig, conn *amqp.Connection, logger *slog.Logger) event.EventPublisher {
	if conn == nil {
		return event.NopPublisher{}
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Error("RabbitMQ publisher unavailable, events disabled", slog.Any("error", err))
		return event.NopPublisher{}
	}
	return publisher
}
