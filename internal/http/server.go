// Package http provides the HTTP server of the webhook receiver and its middleware.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/surveyhook/internal/config"
	"github.com/allisson/surveyhook/internal/metrics"
	surveyHTTP "github.com/allisson/surveyhook/internal/survey/http"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "SurveyCake Webhook Receiver"

// Version is the application version reported by the root endpoint.
var Version = "1.0.0"

// HealthChecker checks the database the receiver writes to.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        *gin.Engine
	healthChecker HealthChecker
	logger        *slog.Logger
}

// NewServer creates a new HTTP server. A nil healthChecker reports the database as unavailable.
func NewServer(
	healthChecker HealthChecker,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		healthChecker: healthChecker,
		logger:        logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Fetch retries can hold a webhook request for API_MAX_RETRIES * (API_TIMEOUT + API_RETRY_DELAY).
			WriteTimeout: 2 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and routes.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	webhookHandler *surveyHTTP.WebhookHandler,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	router := newBaseRouter(s.logger)

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/", s.rootHandler)
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	webhook := router.Group("/webhook")
	if cfg.RateLimitEnabled {
		webhook.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	webhook.POST("/surveycake", webhookHandler.ReceiveHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// rootHandler reports that the service is running.
func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "running",
		"service":   ServiceName,
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// healthHandler checks the database.
func (s *Server) healthHandler(c *gin.Context) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err := s.ping(c.Request.Context()); err != nil {
		s.logger.Error("health check failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": timestamp,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": timestamp,
	})
}

// readinessHandler reports whether the server can take webhook traffic.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"components": gin.H{
				"database": "error",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"components": gin.H{
			"database": "ok",
		},
	})
}

func (s *Server) ping(ctx context.Context) error {
	if s.healthChecker == nil {
		return fmt.Errorf("database not configured")
	}
	return s.healthChecker.Ping(ctx)
}
