package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/classroom-reservation/internal/config"
)

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.7")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/reservations")

	cases := map[string]string{
		"ip":         "rl:ip:10.0.0.7",
		"user":       "rl:user:anon",
		"route":      "rl:route:POST /api/reservations",
		"ip_user":    "rl:ip:10.0.0.7:user:anon",
		"":           "rl:ip:10.0.0.7:user:anon:route:POST /api/reservations",
		"user_route": "rl:user:anon:route:POST /api/reservations",
	}
	for strategy, want := range cases {
		cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: strategy}
		assert.Equal(t, want, buildRateKey(cfg, c), strategy)
	}

	c.Set(ctxUserID, "u1")
	assert.Equal(t, "rl:user:u1", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(4), asInt64(4))
	assert.Equal(t, int64(5), asInt64(5.9))
	assert.Equal(t, int64(6), asInt64("6"))
	assert.Equal(t, int64(0), asInt64("x"))
	assert.Equal(t, int64(0), asInt64(nil))
}
