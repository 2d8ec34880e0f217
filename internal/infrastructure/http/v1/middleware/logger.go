package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	corectx "dairyledger/internal/core/context"
	"dairyledger/pkg/logger"
)

// Logger middleware logs HTTP requests with timing and status, and places
// the application logger in the request context for downstream layers.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		latency := time.Since(start)

		log.Infow("http request",
			"request_id", corectx.GetRequestID(c.Request.Context()),
			"trace_id", corectx.GetTraceID(c.Request.Context()),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
			"error", c.Errors.ByType(gin.ErrorTypePrivate).String(),
		)
	}
}
