package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/settings"
	"vitrina/internal/transport/http/ez"
)

type Settings struct {
	svc *settings.Service
}

func NewSettings(svc *settings.Service) *Settings { return &Settings{svc: svc} }

func (h *Settings) MountAdmin(admin ez.EZ) {
	ez.Register(admin, ez.Action[struct{}, *domain.Settings]{
		Method: http.MethodGet,
		Path:   "/settings",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Settings, error) {
			return h.svc.Get(c.Request.Context())
		},
	})

	ez.Register(admin, ez.Action[domain.Settings, *domain.Settings]{
		Method: http.MethodPut,
		Path:   "/settings",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *domain.Settings) (*domain.Settings, error) {
			return h.svc.Put(c.Request.Context(), in)
		},
	})
}
