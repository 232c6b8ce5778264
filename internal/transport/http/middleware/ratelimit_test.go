package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profilehub/internal/ratelimit"
)

func newLimitedEngine(tier ratelimit.Tier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ClientRateLimit(ratelimit.NewStore(), tier))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestClientRateLimitRejectsWithRetryAfter(t *testing.T) {
	tier := ratelimit.Tier{Name: "test", Window: time.Minute, Max: 2}
	r := newLimitedEngine(tier)

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)

	w := do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	retry := w.Header().Get("Retry-After")
	require.NotEmpty(t, retry)
	assert.NotEqual(t, "0", retry, "Retry-After must be at least one second")
}

func TestClientRateLimitKeysByIP(t *testing.T) {
	tier := ratelimit.Tier{Name: "test", Window: time.Minute, Max: 1}
	r := newLimitedEngine(tier)

	do := func(addr string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1001"))
	// 另一个客户端不受影响
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}
