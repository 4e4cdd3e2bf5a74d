package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareRedactsTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/public/invoices/:token", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/public/invoices/tok_secret123", nil)
	req.Header.Set("X-Request-Id", "req-7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-7", rec.Header().Get("X-Request-Id"))
	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/public/invoices/****", fields["path"])
	assert.Equal(t, "/public/invoices/:token", fields["route"])
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestGinMiddlewareGeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
}
