package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/surveyhook/internal/httputil"
)

// newBaseRouter returns an engine with the middleware every server shares:
// panic recovery, UUIDv7 request ids and request logging.
func newBaseRouter(logger *slog.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.CustomRecovery(recoveryHandler(logger)))
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))

	return router
}

// recoveryHandler turns a panic into a 500 carrying the panic text.
func recoveryHandler(logger *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			slog.Any("error", recovered),
			slog.String("request_id", requestid.Get(c)),
			slog.String("path", c.Request.URL.Path),
			slog.String("method", c.Request.Method),
		)

		c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.ErrorResponse{
			Status:  httputil.StatusError,
			Message: fmt.Sprint(recovered),
		})
	}
}
