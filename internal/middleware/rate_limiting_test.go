package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/denisdmm/fittrack/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateLimiterMock struct {
	allowedPerKey map[string]int
	seenKeys      []string
}

func (m *rateLimiterMock) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	m.seenKeys = append(m.seenKeys, key)
	allowed := m.allowedPerKey[key]
	if allowed > 0 {
		m.allowedPerKey[key] = allowed - 1
	}
	return &redis_rate.Result{
		Allowed:    allowed,
		RetryAfter: 30 * time.Second,
	}, nil
}

func TestRateLimit(t *testing.T) {
	clientIP := gofakeit.IPv4Address()
	limiter := &rateLimiterMock{
		allowedPerKey: map[string]int{
			"login||" + clientIP: 2,
		},
	}
	metricsManager := metrics.NewTestManager()

	nextCalled := 0
	handler := RateLimit(limiter, "login", 2, metricsManager)(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			nextCalled++
		}),
	)

	doRequest := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/a/login", nil)
		req.Header.Set("X-Real-Ip", ip)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	require.Equal(t, http.StatusOK, doRequest(clientIP).Code)
	require.Equal(t, http.StatusOK, doRequest(clientIP).Code)
	assert.Equal(t, 2, nextCalled)

	// third request within the window gets bounced
	resp := doRequest(clientIP)
	assert.Equal(t, http.StatusTooEarly, resp.Code)
	assert.Contains(t, resp.Body.String(), "retry after")
	assert.Equal(t, 2, nextCalled)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedLogins))

	// a different client has its own budget key
	otherIP := gofakeit.IPv4Address()
	doRequest(otherIP)
	assert.Contains(t, limiter.seenKeys, "login||"+otherIP)
}
