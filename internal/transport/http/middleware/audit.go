package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 日志里需要打码的 query key
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "client_secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// Audit 记录写操作是谁做的（访问日志由 ginzap 负责）；读请求只在 debug 级别出现
func Audit(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		lvl := zap.InfoLevel
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions {
			lvl = zap.DebugLevel
		}
		if ce := l.Check(lvl, "audit"); ce != nil {
			ce.Write(
				zap.String("rid", c.GetString(KeyRequestID)),
				zap.String("uid", c.GetString(KeyUserID)),
				zap.String("role", c.GetString(KeyRole)),
				zap.String("method", c.Request.Method),
				zap.String("route", c.FullPath()),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.ClientIP()),
				zap.Any("query", maskQuery(c.Request.URL.Query())),
			)
		}
	}
}
