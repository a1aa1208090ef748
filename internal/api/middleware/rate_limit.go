package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/pkg/redis"
	"dhs-academy/backend/pkg/response"
)

// RateLimit 登录类接口的滑动窗口限流（按 IP + 路由计数）
// rdb 为 nil 或 Redis 出错时降级放行，与 JWTAuth 的黑名单策略一致
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("dhs:ratelimit:%s:%s", c.FullPath(), c.ClientIP())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil || allowed {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
		response.Error(c, http.StatusTooManyRequests, response.CodeRateLimited, "Trop de tentatives, réessayez plus tard")
		c.Abort()
	}
}
