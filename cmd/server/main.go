package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"fleetflow/internal/app"
	"fleetflow/internal/config"
	"fleetflow/internal/domain"
	"fleetflow/internal/handler"
	"fleetflow/internal/notify"
	internalRedis "fleetflow/internal/redis"
	"fleetflow/internal/repository/postgres"
	"fleetflow/internal/service"
)

func main() {
	cfg := config.Load()
	log := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// New Relic first so the database and Redis clients can be instrumented.
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	var rmq *app.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rmq, err = app.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to rabbitmq")
		}
		defer rmq.Close()
		log.Info("connected to RabbitMQ")
	}

	server, err := wireServer(db, redisClient, rmq, nrApp, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire server")
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	rmq *app.RabbitMQ,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *logrus.Logger,
) (*http.Server, error) {
	registry := domain.DefaultLicenseRegistry()
	if cfg.Fleet.LicenseCategoriesFile != "" {
		var err error
		registry, err = config.LoadLicenseRegistry(cfg.Fleet.LicenseCategoriesFile)
		if err != nil {
			return nil, err
		}
	}

	clock := domain.SystemClock{}

	sinks := notify.Multi{notify.NewLogSink(log)}
	if rmq != nil {
		amqpSink, err := notify.NewAMQPSink(rmq.Channel, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, amqpSink)
	}

	var locker service.Locker
	switch cfg.Lock.Backend {
	case "local":
		locker = service.NewLocalLocker(cfg.Lock.WaitTimeout)
	default:
		locker = service.NewRedisLocker(internalRedis.NewLockStore(redisClient), cfg.Lock.TTL, cfg.Lock.WaitTimeout, cfg.Lock.PollInterval, log)
	}

	deps := service.Deps{
		Store:    postgres.NewStore(db),
		Locker:   locker,
		Registry: registry,
		Clock:    clock,
		Refs:     internalRedis.NewSequenceStore(redisClient),
		Notifier: service.NewNotificationService(sinks, clock, log),
		Log:      log,
	}
	if cfg.Cache.Enabled {
		deps.Cache = internalRedis.NewCacheStore(redisClient, cfg.Cache.VehicleTTL, cfg.Cache.DriverTTL)
	}

	metricsService := service.NewMetricsService(clock)
	vehicleService := service.NewVehicleService(deps, metricsService)
	driverService := service.NewDriverService(deps)
	tripService := service.NewTripService(deps, metricsService)
	maintenanceService := service.NewMaintenanceService(deps, metricsService)
	expenseService := service.NewExpenseService(deps, metricsService)
	dashboardService := service.NewDashboardService(deps)

	router := app.NewRouter(app.RouterDeps{
		VehicleHandler:     handler.NewVehicleHandler(vehicleService, tripService, maintenanceService, expenseService),
		DriverHandler:      handler.NewDriverHandler(driverService, tripService),
		TripHandler:        handler.NewTripHandler(tripService),
		MaintenanceHandler: handler.NewMaintenanceHandler(maintenanceService),
		ExpenseHandler:     handler.NewExpenseHandler(expenseService),
		DashboardHandler:   handler.NewDashboardHandler(dashboardService),
		IdempotencyStore:   internalRedis.NewIdempotencyStore(redisClient),
		NewRelicApp:        nrApp,
		CORSOrigins:        cfg.Server.CORSOrigins,
		Log:                log,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
