package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/surveyhook/internal/config"
	"github.com/allisson/surveyhook/internal/metrics"
	surveyDomain "github.com/allisson/surveyhook/internal/survey/domain"
	surveyHTTP "github.com/allisson/surveyhook/internal/survey/http"
	"github.com/allisson/surveyhook/internal/survey/http/mocks"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a test server backed by the given health checker.
func createTestServer(checker HealthChecker) *Server {
	return NewServer(checker, "localhost", 8080, discardLogger())
}

// createRoutedServer creates a server with the full router and a mocked ingestion use case.
func createRoutedServer(t *testing.T, cfg *config.Config) (*Server, *mocks.MockResponseUseCase) {
	t.Helper()

	checker := &mocks.MockHealthChecker{}
	checker.On("Ping", mock.Anything).Return(nil).Maybe()

	useCase := &mocks.MockResponseUseCase{}
	server := createTestServer(checker)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server.SetupRouter(ctx, cfg, surveyHTTP.NewWebhookHandler(useCase, discardLogger()), nil, "test")
	return server, useCase
}

func postWebhook(handler http.Handler, svid, hash, remoteAddr string) *httptest.ResponseRecorder {
	form := url.Values{"svid": {svid}, "hash": {hash}}
	req := httptest.NewRequest(http.MethodPost, "/webhook/surveycake", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRootHandler(t *testing.T) {
	server := createTestServer(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	server.rootHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "running", response["status"])
	assert.Equal(t, "SurveyCake Webhook Receiver", response["service"])
	assert.Equal(t, Version, response["version"])
	_, err := time.Parse(time.RFC3339, response["timestamp"])
	assert.NoError(t, err)
}

func TestHealthHandler(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		checker := &mocks.MockHealthChecker{}
		checker.On("Ping", mock.Anything).Return(nil).Once()
		server := createTestServer(checker)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		server.healthHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "connected", response["database"])
		assert.NotEmpty(t, response["timestamp"])
		checker.AssertExpectations(t)
	})

	t.Run("Unhealthy_DatabaseCheckFails", func(t *testing.T) {
		checker := &mocks.MockHealthChecker{}
		checker.On("Ping", mock.Anything).Return(errors.New("database health check failed: no such table")).Once()
		server := createTestServer(checker)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		server.healthHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "unhealthy", response["status"])
		assert.Equal(t, "database health check failed: no such table", response["error"])
		assert.NotEmpty(t, response["timestamp"])
		_, hasDatabase := response["database"]
		assert.False(t, hasDatabase)
	})

	t.Run("Unhealthy_NoChecker", func(t *testing.T) {
		server := createTestServer(nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

		server.healthHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestReadinessHandler(t *testing.T) {
	t.Run("Ready", func(t *testing.T) {
		checker := &mocks.MockHealthChecker{}
		checker.On("Ping", mock.Anything).Return(nil).Once()
		server := createTestServer(checker)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "ready", response["status"])
	})

	t.Run("NotReady_NilChecker", func(t *testing.T) {
		server := createTestServer(nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_ready", response["status"])

		components, ok := response["components"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "error", components["database"])
	})
}

// TestCustomLoggerMiddleware verifies the request log carries addressing headers.
func TestCustomLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set("X-Real-IP", "203.0.113.8")
	req.Header.Set("User-Agent", "SurveyCake-Webhook")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "/test", entry["path"])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, "203.0.113.7", entry["x_forwarded_for"])
	assert.Equal(t, "203.0.113.8", entry["x_real_ip"])
	assert.Equal(t, "SurveyCake-Webhook", entry["user_agent"])
	assert.Equal(t, w.Header().Get("X-Request-Id"), entry["request_id"])
}

// TestRecoveryHandler verifies panics become a 500 carrying the panic text.
func TestRecoveryHandler(t *testing.T) {
	server, _ := createRoutedServer(t, &config.Config{})
	server.router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "error", response["status"])
	assert.Equal(t, "test panic", response["message"])
}

func TestRouter_Endpoints(t *testing.T) {
	server, useCase := createRoutedServer(t, &config.Config{})

	t.Run("Root", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Health", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("RequestIDHeader", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		parsed, err := uuid.Parse(w.Header().Get("X-Request-Id"))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("Webhook", func(t *testing.T) {
		useCase.On("Ingest", mock.Anything, "SV1", "hash-1").
			Return(&surveyDomain.SurveyResponse{SurveyHash: "SV1", ResponseHash: "hash-1"}, nil).
			Once()

		w := postWebhook(server.GetHandler(), "SV1", "hash-1", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"success"`)
		useCase.AssertExpectations(t)
	})

	t.Run("WebhookRejectsGet", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhook/surveycake", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("NoMetricsEndpoint", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_WebhookRateLimit(t *testing.T) {
	server, useCase := createRoutedServer(t, &config.Config{
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 0.1,
		RateLimitBurst:          1,
	})

	useCase.On("Ingest", mock.Anything, "SV1", "hash-1").
		Return(&surveyDomain.SurveyResponse{SurveyHash: "SV1", ResponseHash: "hash-1"}, nil)

	w := postWebhook(server.GetHandler(), "SV1", "hash-1", "192.0.2.10:1234")
	assert.Equal(t, http.StatusOK, w.Code)

	w = postWebhook(server.GetHandler(), "SV1", "hash-1", "192.0.2.10:1235")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Health checks are not rate limited.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.0.2.10:1236"
	server.GetHandler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_HTTPMetrics(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	checker := &mocks.MockHealthChecker{}
	checker.On("Ping", mock.Anything).Return(nil)
	server := createTestServer(checker)
	server.SetupRouter(
		context.Background(),
		&config.Config{},
		surveyHTTP.NewWebhookHandler(&mocks.MockResponseUseCase{}, discardLogger()),
		provider,
		"test_app",
	)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `path="/health"`)
}

// TestServer_StartWithoutRouter verifies Start refuses to serve before SetupRouter.
func TestServer_StartWithoutRouter(t *testing.T) {
	server := createTestServer(nil)
	assert.Error(t, server.Start(context.Background()))
}

// TestServer_ShutdownGracefully tests graceful server shutdown.
func TestServer_ShutdownGracefully(t *testing.T) {
	server, _ := createRoutedServer(t, &config.Config{})
	server.server.Addr = "127.0.0.1:0"

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	time.Sleep(100 * time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	assert.NoError(t, server.Shutdown(shutdownCtx))

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	t.Run("Scrape", func(t *testing.T) {
		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, MetricsPath, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
		assert.Contains(t, w.Body.String(), "go_goroutines")

		parsed, err := uuid.Parse(w.Header().Get("X-Request-Id"))
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("UnknownPath", func(t *testing.T) {
		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "error", response["status"])
		assert.Equal(t, "not found", response["message"])
	})

	t.Run("RecoversPanic", func(t *testing.T) {
		metricsServer.router.GET("/panic", func(c *gin.Context) {
			panic("collector exploded")
		})

		w := httptest.NewRecorder()
		metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "error", response["status"])
		assert.Equal(t, "collector exploded", response["message"])
	})
}
