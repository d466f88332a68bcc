package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logging.Logger
	logging.Logger = logging.New(zap.New(core))
	t.Cleanup(func() { logging.Logger = previous })
	return logs
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	var seen string
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString(models.RequestIDContextKey)
		c.Status(http.StatusOK)
	})

	w := executeRequest(router, http.MethodGet, "/test", nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, seen)

	w = executeRequest(router, http.MethodGet, "/test", map[string]string{RequestIDHeader: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42", seen)
}

func TestRequestLogger(t *testing.T) {
	logs := observeLogs(t)

	router := gin.New()
	router.Use(RequestID(), RequestLogger())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	executeRequest(router, http.MethodGet, "/items/7", map[string]string{RequestIDHeader: "req-1"})
	executeRequest(router, http.MethodGet, "/boom", nil)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "/items/7", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)

	assert.GreaterOrEqual(t, testutil.CollectAndCount(observability.RequestDuration), 2, "one series per route and status")
}

func TestRequestTracker(t *testing.T) {
	router := gin.New()
	router.Use(RequestTracker())
	var during float64
	router.GET("/test", func(c *gin.Context) {
		during = testutil.ToFloat64(observability.ActiveConnections)
		c.Status(http.StatusOK)
	})

	base := testutil.ToFloat64(observability.ActiveConnections)
	executeRequest(router, http.MethodGet, "/test", nil)
	assert.Equal(t, base+1, during)
	assert.Equal(t, base, testutil.ToFloat64(observability.ActiveConnections))
}

func TestAuditContext(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), AuthMiddleware(testClientID), AuditContext(), RequestTiming())
	var seen utils.AuditContext
	router.POST("/test", func(c *gin.Context) {
		seen = utils.AuditContextFrom(c.Request.Context())
		c.Status(http.StatusCreated)
	})

	token := createTestJWT(t, "agent-7", []string{"AGENT"}, nil)
	w := executeRequest(router, http.MethodPost, "/test", map[string]string{
		"Authorization": "Bearer " + token,
		RequestIDHeader: "req-9",
		"User-Agent":    "field-tablet",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "agent-7", seen.UserID)
	assert.Equal(t, "req-9", seen.RequestID)
	assert.Equal(t, "field-tablet", seen.UserAgent)
}
