package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/exam-seat-allocation/internal/config"
)

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/seats/search?roll=1", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/seats/search")

	cfg := config.RateLimitConfig{Prefix: "seatrl"}
	assert.Equal(t, "seatrl:ip:203.0.113.9:route:GET /api/seats/search", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "seatrl:ip:203.0.113.9", buildRateKey(cfg, c))

	cfg.KeyStrategy = "subject_route"
	assert.Equal(t, "seatrl:sub:anon:route:GET /api/seats/search", buildRateKey(cfg, c))
	c.Set("user_id", "admin")
	assert.Equal(t, "seatrl:sub:admin:route:GET /api/seats/search", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Zero(t, asInt64(nil))
}

func TestParseDecision(t *testing.T) {
	d, err := parseDecision([]interface{}{int64(0), int64(0), int64(1500)})
	assert.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 1500*time.Millisecond, d.RetryAfter)
	assert.Equal(t, 2, retrySeconds(d.RetryAfter))

	d, err = parseDecision([]interface{}{int64(1), int64(29), int64(0)})
	assert.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(29), d.Remaining)

	_, err = parseDecision("OK")
	assert.Error(t, err)
}
