package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"vitrina/internal/core/auth"
	"vitrina/internal/core/server"
	"vitrina/internal/transport/http/ez"
	mdw "vitrina/internal/transport/http/middleware"
)

// 请求 JSON 里出现未知字段直接 400
func init() { binding.EnableDecoderDisallowUnknownFields = true }

// Limits 中间件参数
type Limits struct {
	RPS         rate.Limit
	Burst       int
	PerIPRPS    rate.Limit // 登录 / 提交类接口
	PerIPBurst  int
	Concurrency int64
	MaxBody     int64
	Timeout     time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		RPS:         200,
		Burst:       400,
		PerIPRPS:    1,
		PerIPBurst:  10,
		Concurrency: 300,
		MaxBody:     16 << 20,
		Timeout:     30 * time.Second,
	}
}

// base 两个 engine 共用的中间件链
func base(l *zap.Logger, env, name string, lim Limits) *gin.Engine {
	r := server.NewRouter(l, env)
	r.MaxMultipartMemory = lim.MaxBody
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(lim.RPS, lim.Burst),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.MaxBody),
		mdw.Timeout(lim.Timeout),
		mdw.Recovery(l),
		mdw.Metrics(name),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", mdw.MetricsHandler())
	return r
}

func NewAPIEngine(l *zap.Logger, env string, jwter *auth.JWTer, lim Limits, reg *Registry) *gin.Engine {
	r := base(l, env, "api", lim)

	// 前缀
	api := r.Group("/api/v1", mdw.Audit(l))

	// 登录、注册提交、联系表单按 IP 再限一次
	perIP := mdw.RateLimitPerIP(lim.PerIPRPS, lim.PerIPBurst)
	api.Use(func(c *gin.Context) {
		if c.Request.Method == http.MethodPost && isThrottled(c.FullPath()) {
			perIP(c)
			return
		}
		c.Next()
	})

	// 鉴权分组（/me 等必须挂这里，才能拿到 userId）
	authUser := api.Group("", mdw.AuthJWT(jwter, ""))

	reg.MountAPI(ez.Groups{
		Public: ez.New(api, l),
		User:   ez.New(authUser, l),
	})
	return r
}

func isThrottled(route string) bool {
	switch route {
	case "/api/v1/auth/login", "/api/v1/registros", "/api/v1/contact":
		return true
	}
	return false
}
