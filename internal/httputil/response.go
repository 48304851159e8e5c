// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/surveyhook/internal/errors"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ErrorResponse represents a structured error response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusCode maps an error kind to an HTTP status code. Unknown errors are 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleErrorGin writes message with the status code for err and logs the full
// error chain, which is never sent to the client.
func HandleErrorGin(c *gin.Context, err error, message string, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode := StatusCode(err)

	if logger != nil {
		level := slog.LevelError
		if statusCode < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", statusCode),
			slog.String("message", message),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, ErrorResponse{Status: StatusError, Message: message})
}

// HandleBadRequestGin writes a 400 Bad Request response with message.
func HandleBadRequestGin(c *gin.Context, message string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.String("message", message), slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Status: StatusError, Message: message})
}
