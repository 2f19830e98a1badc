package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/scan-token-service/internal/config"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/scans", "POST", 200, 3*time.Millisecond)
	m.RecordRequest("/scans", "POST", 200, 2*time.Millisecond)
	m.RecordError("/scans", "POST", "TOKEN_EXPIRED")
	m.RecordTokenOutcome("verify", "token_expired")
	m.RecordScan("verified")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/scans|POST|200"])
	assert.Equal(t, int64(5), snap.RequestMillis["/scans|POST|200"])
	assert.Equal(t, int64(1), snap.Errors["/scans|POST|TOKEN_EXPIRED"])
	assert.Equal(t, int64(1), snap.TokenOperations["verify|token_expired"])
	assert.Equal(t, int64(1), snap.Scans["verified"])

	m.RecordScan("verified")
	assert.Equal(t, int64(1), snap.Scans["verified"], "snapshot must not alias live counters")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordTokenOutcome("issue", "ok")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, int64(1), metrics.Snapshot().Requests["/ping|GET|200"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "bogus"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
