package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Anupamak004/Public-speaking-coach/pkg/logging"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// RequestID injects a unique X-Request-Id header into every request/response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Recovery recovers from panics, logs the stack and answers 500
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error(fmt.Errorf("%v", err), "Panic recovered", logging.Fields{
					"stack":      string(debug.Stack()),
					"path":       c.Request.URL.Path,
					"method":     c.Request.Method,
					"request_id": c.GetString(requestIDKey),
				})
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:     "internal server error",
					Code:      codeInternal,
					RequestID: c.GetString(requestIDKey),
				})
			}
		}()
		c.Next()
	}
}

// BodySizeLimit caps the request body
func BodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// RequestLogger logs every request with method, path, status and duration.
// Health checks are skipped.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == healthPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := logging.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": latency.Milliseconds(),
			"client":      c.ClientIP(),
			"request_id":  c.GetString(requestIDKey),
		}

		switch {
		case status >= 500:
			logger.Error(fmt.Errorf("status %d", status), "Request completed", fields)
		case status >= 400:
			logger.Warn("Request completed", fields)
		default:
			logger.Debug("Request completed", fields)
		}
	}
}
