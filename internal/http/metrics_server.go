package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/surveyhook/internal/httputil"
	"github.com/allisson/surveyhook/internal/metrics"
)

// MetricsPath is where the metrics server exposes the Prometheus scrape endpoint.
const MetricsPath = "/metrics"

// MetricsServer serves Prometheus metrics on a port separate from the webhook,
// so scrapes never compete with the webhook rate limiter or its long write timeout.
type MetricsServer struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewMetricsServer creates a MetricsServer exposing provider at MetricsPath.
func NewMetricsServer(
	host string,
	port int,
	logger *slog.Logger,
	provider *metrics.Provider,
) *MetricsServer {
	router := newBaseRouter(logger)
	router.GET(MetricsPath, gin.WrapH(provider.Handler()))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httputil.ErrorResponse{
			Status:  httputil.StatusError,
			Message: "not found",
		})
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		router: router,
		logger: logger,
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start serves metrics until Shutdown is called.
func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("starting metrics server",
		slog.String("addr", s.server.Addr),
		slog.String("path", MetricsPath),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	return nil
}

// Shutdown stops accepting scrapes and waits for in-flight ones until ctx is done.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down metrics server")
	return s.server.Shutdown(ctx)
}
