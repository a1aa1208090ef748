package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dhs-academy/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// 绑定阶段读到上限时 handler 会记录 *http.MaxBytesError，这里统一改写为 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Corps de requête trop volumineux")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &tooLarge) {
				response.Error(c, http.StatusRequestEntityTooLarge, response.CodeBodyTooLarge, "Corps de requête trop volumineux")
				return
			}
		}
	}
}
