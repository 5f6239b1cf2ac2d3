package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/jobs/:job_id/pay", "POST", 200, 15*time.Millisecond)
	m.RecordRequest("/jobs/:job_id/pay", "POST", 200, 5*time.Millisecond)
	m.RecordError("/jobs/1/pay", "POST", "ALREADY_PAID")
	m.RecordLedgerOp("pay_job", "ok")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/jobs/:job_id/pay|POST|200"])
	assert.Equal(t, int64(20), snap.RequestMillis["/jobs/:job_id/pay|POST|200"])
	assert.Equal(t, int64(1), snap.Ledger["pay_job|ok"])
	assert.Len(t, snap.Errors, 1)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordLedgerOp("deposit", "ok")
	assert.Empty(t, m.Snapshot().Ledger)
}

func TestRequestLoggerPropagatesRequestID(t *testing.T) {
	m := NewMetrics()
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString(RequestID(c)) })

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, int64(2), m.Snapshot().Requests["/ping|GET|200"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
