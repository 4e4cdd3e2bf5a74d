package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/invoicedesk/internal/observability/context"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug bool
	// ErrorClassifier maps the last handler error to error_type and error_code.
	ErrorClassifier func(err error) (string, string)
	// RedactParams names route params whose values never reach the logs.
	// Defaults to "token".
	RedactParams []string
}

// GinMiddleware assigns a request id and writes one log line per request.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	redact := cfg.RedactParams
	if len(redact) == 0 {
		redact = []string{"token"}
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFor(c)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", redactedPath(c, redact)),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
			zap.String("client_ip", c.ClientIP()),
		}
		if invoiceID := c.GetString("invoice_id"); invoiceID != "" {
			fields = append(fields, zap.String("invoice_id", invoiceID))
		}
		if last := c.Errors.Last(); last != nil && cfg.ErrorClassifier != nil {
			errorType, errorCode := cfg.ErrorClassifier(last.Err)
			fields = append(fields, zap.String("error_type", errorType), zap.String("error_code", errorCode))
			if cfg.Debug {
				fields = append(fields, zap.Error(last.Err))
			}
		}

		log := FromContext(c.Request.Context())
		switch {
		case route == "/health" || route == "/metrics":
			log.Debug("http_request", fields...)
		case status >= http.StatusInternalServerError:
			log.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}

// requestIDFor reuses an inbound X-Request-Id and echoes it back.
func requestIDFor(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(requestIDHeader))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(requestIDHeader, id)
	return id
}

func redactedPath(c *gin.Context, params []string) string {
	path := c.Request.URL.Path
	for _, name := range params {
		if value := c.Param(name); value != "" {
			path = strings.ReplaceAll(path, value, "****")
		}
	}
	return path
}
