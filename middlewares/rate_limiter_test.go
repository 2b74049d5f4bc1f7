package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servhunt/digimenu/middlewares"
)

func limitedEngine(burst int, interval time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middlewares.NewRateLimiter(burst, interval).RateLimit())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func ping(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterExhaustsBurst(t *testing.T) {
	r := limitedEngine(2, time.Hour)

	require.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	require.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))
}

func TestRateLimiterIsPerClient(t *testing.T) {
	r := limitedEngine(1, time.Hour)

	require.Equal(t, http.StatusOK, ping(r, "10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.2"))
}
