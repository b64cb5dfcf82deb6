package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"weather_gateway/internal/auth"
	"weather_gateway/internal/cache"
	"weather_gateway/internal/config"
	"weather_gateway/internal/db"
	"weather_gateway/internal/exchange"
	"weather_gateway/internal/handler"
	"weather_gateway/internal/observability"
	"weather_gateway/internal/queue"
	"weather_gateway/internal/user"
	"weather_gateway/internal/weather"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	configureLogging(cfg)

	database, err := db.Init(&cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	if err := db.Migrate(context.Background(), database); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	// Initialize Prometheus metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)
	logrus.Info("Metrics initialized")

	healthChecks := map[string]func(ctx context.Context) error{
		"database": database.PingContext,
	}

	// Rate snapshot store
	var store exchange.SnapshotStore = exchange.NewMemoryStore()
	if cfg.Exchange.CacheBackend == config.CacheBackendRedis {
		rdb, err := cache.SetupRedis(&cfg.Redis)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close redis connection")
			}
		}()
		store = cache.NewSnapshotStore(rdb, cfg.Exchange.CacheTTL)
		healthChecks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	rates := exchange.NewCache(
		store,
		exchange.NewHTTPProvider(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.Timeout, metrics),
		cfg.Exchange.CacheTTL,
		exchange.WithProviderTimeout(cfg.Exchange.Timeout),
		exchange.WithMetrics(metrics),
	)

	weatherLogs := weather.NewLogRepository(database)

	// Weather queries go through RabbitMQ when configured, otherwise straight to Postgres
	var recorder weather.QueryRecorder = weather.NewRepositoryRecorder(weatherLogs)
	if cfg.RabbitMQ.URL != "" {
		conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ connection")
			}
		}()

		ch, err := queue.CreateChannel(conn)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
		}
		if _, err := queue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
		}
		recorder = queue.NewPublisher(ch, cfg.RabbitMQ.Queue, metrics)
		logrus.WithField("queue", cfg.RabbitMQ.Queue).Info("Weather queries are published to RabbitMQ")
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := handler.SetupHandler(cfg, &handler.Dependencies{
		Users:           user.NewUserRepository(database),
		WeatherLogs:     weatherLogs,
		WeatherProvider: weather.NewOpenWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey, cfg.Weather.Timeout, metrics),
		Recorder:        recorder,
		Rates:           rates,
		Tokens:          auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		Metrics:         metrics,
		Gatherer:        reg,
		HealthChecks:    healthChecks,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}
}

func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logrus.WithError(err).Warnf("Unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.AppEnv == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
