package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"profilehub/internal/ratelimit"
	resp "profilehub/internal/transport/http/response"
)

// RateLimit 全局令牌桶：整个进程级的粗保护，挡突发洪峰
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, resp.Error(resp.CodeTooManyRequests, "too many requests"))
	}
}

// ClientRateLimit 按 (客户端IP, 档位) 的固定窗口计数；拒绝时带 Retry-After。
// store 由调用方注入，测试可以构造独立实例。
func ClientRateLimit(store *ratelimit.Store, tier ratelimit.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := store.Allow(c.ClientIP(), tier)
		if d.Allowed {
			c.Next()
			return
		}
		retry := int(d.RetryAfter / time.Second)
		if d.RetryAfter%time.Second > 0 || retry < 1 {
			retry++
		}
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(http.StatusTooManyRequests,
			resp.Error(resp.CodeTooManyRequests, "rate limit exceeded"))
	}
}
