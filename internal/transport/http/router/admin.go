package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vitrina/internal/core/auth"
	"vitrina/internal/domain"
	"vitrina/internal/transport/http/ez"
	mdw "vitrina/internal/transport/http/middleware"
)

func NewAdminEngine(l *zap.Logger, env string, jwter *auth.JWTer, lim Limits, reg *Registry) *gin.Engine {
	r := base(l, env, "admin", lim)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1", mdw.AuthJWT(jwter, domain.RoleAdmin), mdw.Audit(l))
	reg.MountAdmin(ez.New(admin, l))
	return r
}
