package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/catalog"
	"vitrina/internal/transport/http/ez"
)

// HeaderSession 浏览会话 id，软隐藏按它隔离
const HeaderSession = "X-Session-ID"

type Catalog struct {
	svc *catalog.Service
}

func NewCatalog(svc *catalog.Service) *Catalog { return &Catalog{svc: svc} }

type currencyQ struct {
	Currency string `form:"currency"`
}

type hideAllIn struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

type visibilityIn struct {
	Visible *bool `json:"visible" binding:"required"`
}

func (h *Catalog) MountAPI(g ez.Groups) {
	ez.Register(g.Public, ez.Action[currencyQ, []catalog.Entry]{
		Method: http.MethodGet,
		Path:   "/profiles",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *currencyQ) ([]catalog.Entry, error) {
			cur, err := catalog.ParseCurrency(in.Currency)
			if err != nil {
				return nil, err
			}
			return h.svc.List(c.Request.Context(), c.GetHeader(HeaderSession), cur)
		},
	})

	ez.Register(g.Public, ez.Action[currencyQ, *catalog.Entry]{
		Method: http.MethodGet,
		Path:   "/profiles/:id",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *currencyQ) (*catalog.Entry, error) {
			cur, err := catalog.ParseCurrency(in.Currency)
			if err != nil {
				return nil, err
			}
			return h.svc.Get(c.Request.Context(), c.Param("id"), cur)
		},
	})

	ez.Register(g.Public, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/profiles/:id/hide",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.svc.Hide(c.Request.Context(), c.GetHeader(HeaderSession), c.Param("id")); err != nil {
				return nil, err
			}
			return gin.H{"hidden": 1}, nil
		},
	})

	ez.Register(g.Public, ez.Action[hideAllIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/profiles/hide",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *hideAllIn) (gin.H, error) {
			if err := h.svc.HideAll(c.Request.Context(), c.GetHeader(HeaderSession), in.IDs); err != nil {
				return nil, err
			}
			return gin.H{"hidden": len(in.IDs)}, nil
		},
	})

	ez.Register(g.Public, ez.Action[struct{}, gin.H]{
		Method: http.MethodPost,
		Path:   "/profiles/restore",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			if err := h.svc.Restore(c.Request.Context(), c.GetHeader(HeaderSession)); err != nil {
				return nil, err
			}
			return gin.H{"restored": true}, nil
		},
	})

	// 资料所有者激活/下线自己的资料
	ez.Register(g.User, ez.Action[visibilityIn, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/me/profile/visibility",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *visibilityIn) (*domain.Profile, error) {
			return h.svc.SetOwnerVisibility(c.Request.Context(), ez.UserID(c), *in.Visible)
		},
	})
}

func (h *Catalog) MountAdmin(admin ez.EZ) {
	ez.Register(admin, ez.Action[struct{}, []domain.Profile]{
		Method: http.MethodGet,
		Path:   "/profiles",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Profile, error) {
			return h.svc.All(c.Request.Context())
		},
	})

	ez.Register(admin, ez.Action[visibilityIn, *domain.Profile]{
		Method: http.MethodPut,
		Path:   "/profiles/:id/visibility",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *visibilityIn) (*domain.Profile, error) {
			return h.svc.SetVisibility(c.Request.Context(), c.Param("id"), *in.Visible)
		},
	})

	ez.Register(admin, ez.Action[struct{}, *domain.Profile]{
		Method: http.MethodDelete,
		Path:   "/profiles/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Profile, error) {
			return h.svc.SoftDelete(c.Request.Context(), c.Param("id"))
		},
	})
}
