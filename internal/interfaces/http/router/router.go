// Package router assembles the gin engine, middleware chain and route
// registration for the HTTP API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hearback/backend/internal/infrastructure/logger"
	"github.com/hearback/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds router assembly settings
type Config struct {
	// Mode is the gin mode: debug, release or test
	Mode string
	// ServiceName identifies the service in traces
	ServiceName string
	// TracingEnabled toggles the OpenTelemetry middleware
	TracingEnabled bool
	// CORSAllowOrigins is the cross-origin whitelist
	CORSAllowOrigins []string
	// MaxBodyBytes limits request body size, 0 uses the default
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 1 << 20

// New assembles the engine with the standard middleware chain and
// registers every handler under /api/v1.
func New(cfg Config, log *zap.Logger, registrars ...RouteRegistrar) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.RequestLogger(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsCfg))

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	engine.Use(middleware.BodyLimit(maxBody))

	middleware.SetupValidator()

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	for _, registrar := range registrars {
		registrar.RegisterRoutes(api)
	}

	return engine
}
