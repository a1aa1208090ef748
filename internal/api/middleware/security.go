package middleware

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders 安全响应头
// 本服务只返回 JSON 与 xlsx 附件，CSP 直接禁止加载任何资源
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		if c.GetHeader("Authorization") != "" {
			// 带凭证的响应（成绩、处分记录等）不允许被中间代理缓存
			h.Set("Cache-Control", "no-store")
		}

		c.Next()
	}
}
