package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	feedbackapp "github.com/hearback/backend/internal/application/feedback"
	settingsapp "github.com/hearback/backend/internal/application/settings"
	syncapp "github.com/hearback/backend/internal/application/sync"
	"github.com/hearback/backend/internal/infrastructure/config"
	"github.com/hearback/backend/internal/infrastructure/event"
	"github.com/hearback/backend/internal/infrastructure/logger"
	"github.com/hearback/backend/internal/infrastructure/notify"
	"github.com/hearback/backend/internal/infrastructure/persistence"
	"github.com/hearback/backend/internal/infrastructure/telemetry"
	"github.com/hearback/backend/internal/infrastructure/trackers"
	"github.com/hearback/backend/internal/interfaces/http/handler"
	"github.com/hearback/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags
var version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet
		panic(err)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Error reporting. Without a DSN sentry-go stays a no-op.
	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			Release:          version,
		}); err != nil {
			log.Warn("Failed to initialize sentry", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	feedbackRepo := persistence.NewGormFeedbackRepository(db.DB)
	configRepo := persistence.NewGormIntegrationConfigRepository(db.DB)
	revenueAgg := persistence.NewGormRevenueAggregator(db.DB)

	// Tracker providers share one HTTP client bounded by the provider timeout
	httpClient := trackers.NewHTTPClient(cfg.Sync.ProviderTimeout)
	registry := trackers.NewDefaultRegistry(httpClient)
	slackNotifier := notify.NewSlackNotifier(httpClient)

	var mailer feedbackapp.Mailer = notify.NopMailer{}
	if cfg.SMTP.Host != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	// Sync dispatcher and event wiring
	dispatcher := syncapp.NewDispatcher(
		registry,
		configRepo,
		feedbackRepo,
		revenueAgg,
		slackNotifier,
		cfg.Sync.ProviderTimeout,
		cfg.Sync.BulkRatePerSecond,
		log,
	)

	bus := event.NewInMemoryEventBus(log)
	syncHandler := syncapp.NewEventHandler(dispatcher)
	bus.Subscribe(syncHandler, syncHandler.EventTypes()...)

	// Application services
	feedbackService := feedbackapp.NewService(feedbackRepo, bus, mailer, log)
	settingsService := settingsapp.NewService(configRepo)

	// HTTP layer
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine := router.New(router.Config{
		Mode:             mode,
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   cfg.Telemetry.Enabled,
		CORSAllowOrigins: cfg.HTTP.CORSAllowOrigins,
		MaxBodyBytes:     cfg.HTTP.MaxBodySize,
	}, log,
		handler.NewFeedbackHandler(feedbackService),
		handler.NewSettingsHandler(settingsService),
		handler.NewSyncHandler(dispatcher),
		handler.NewSystemHandler(version),
	)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight tracker fan-outs and notification mail finish
	// before the process exits
	dispatcher.Wait()
	feedbackService.Wait()

	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Warn("Tracer provider shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
