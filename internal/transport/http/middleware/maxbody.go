package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "vitrina/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；ez 绑定时自己映射为 413，
// 其它 handler 通过 c.Error 上报的超限错误在这里兜底
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		var mbe *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &mbe) {
				c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeTooLarge, "request body too large"))
				return
			}
		}
	}
}
