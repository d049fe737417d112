package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/account"
	"vitrina/internal/feature/moderation"
	"vitrina/internal/transport/http/ez"
)

type Moderation struct {
	svc *moderation.Service
}

func NewModeration(svc *moderation.Service) *Moderation { return &Moderation{svc: svc} }

func (h *Moderation) Priority() int { return 10 }

type registrosQ struct {
	Status string `form:"status"`
}

type rejectIn struct {
	Reason string `json:"reason" binding:"max=500"`
}

type approvalOut struct {
	Registro moderation.Summary `json:"registro"`
	User     *account.Account   `json:"user,omitempty"`
	Profile  *domain.Profile    `json:"profile,omitempty"`
	Changed  bool               `json:"changed"`
}

func (h *Moderation) MountAdmin(admin ez.EZ) {
	ez.Register(admin, ez.Action[registrosQ, []moderation.Summary]{
		Method: http.MethodGet,
		Path:   "/registros",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *registrosQ) ([]moderation.Summary, error) {
			return h.svc.ListRegistros(c.Request.Context(), domain.Status(in.Status))
		},
	})

	// 详情带媒体，但不带密码哈希
	ez.Register(admin, ez.Action[struct{}, *domain.Registro]{
		Method: http.MethodGet,
		Path:   "/registros/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Registro, error) {
			r, err := h.svc.GetRegistro(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			r.PasswordHash = ""
			return r, nil
		},
	})

	ez.Register(admin, ez.Action[struct{}, approvalOut]{
		Method: http.MethodPost,
		Path:   "/registros/:id/approve",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (approvalOut, error) {
			a, err := h.svc.ApproveRegistro(c.Request.Context(), c.Param("id"), ez.UserID(c))
			if err != nil {
				return approvalOut{}, err
			}
			out := approvalOut{Registro: moderation.Summarize(a.Registro), Profile: a.Profile, Changed: a.Changed}
			if a.User != nil {
				u := account.Public(a.User)
				out.User = &u
			}
			return out, nil
		},
	})

	ez.Register(admin, ez.Action[rejectIn, moderation.Summary]{
		Method: http.MethodPost,
		Path:   "/registros/:id/reject",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *rejectIn) (moderation.Summary, error) {
			r, err := h.svc.RejectRegistro(c.Request.Context(), c.Param("id"), ez.UserID(c), in.Reason)
			if err != nil {
				return moderation.Summary{}, err
			}
			return moderation.Summarize(r), nil
		},
	})

	ez.Register(admin, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/registros/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.DeleteRegistro(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	ez.Register(admin, ez.Action[struct{}, []domain.Thread]{
		Method: http.MethodGet,
		Path:   "/threads/pending",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Thread, error) {
			return h.svc.PendingThreads(c.Request.Context())
		},
	})

	ez.Register(admin, ez.Action[struct{}, *domain.Thread]{
		Method: http.MethodPost,
		Path:   "/threads/:id/approve",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Thread, error) {
			return h.svc.ApproveThread(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(admin, ez.Action[struct{}, *domain.Thread]{
		Method: http.MethodPost,
		Path:   "/threads/:id/reject",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Thread, error) {
			return h.svc.RejectThread(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(admin, ez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/threads/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.DeleteThread(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
