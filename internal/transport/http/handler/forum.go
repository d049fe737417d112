package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/forum"
	"vitrina/internal/transport/http/ez"
)

type Forum struct {
	svc *forum.Service
}

func NewForum(svc *forum.Service) *Forum { return &Forum{svc: svc} }

type threadsQ struct {
	View     string `form:"view"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
}

type replyIn struct {
	ParentID string `json:"parentId"`
	Content  string `json:"content" binding:"required"`
}

type likeIn struct {
	EntityID string `json:"entityId"`
}

func (h *Forum) MountAPI(g ez.Groups) {
	ez.Register(g.Public, ez.Action[threadsQ, []domain.Thread]{
		Method: http.MethodGet,
		Path:   "/threads",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *threadsQ) ([]domain.Thread, error) {
			v := forum.View(in.View)
			if v == "" {
				v = forum.ViewRecent
			}
			return h.svc.List(c.Request.Context(), v, domain.Category(in.Category), in.Tag)
		},
	})

	// 每次打开都计一次浏览
	ez.Register(g.Public, ez.Action[struct{}, *domain.Thread]{
		Method: http.MethodGet,
		Path:   "/threads/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Thread, error) {
			return h.svc.Open(c.Request.Context(), c.Param("id"))
		},
	})

	ez.Register(g.Public, ez.Action[likeIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/threads/:id/like",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *likeIn) (gin.H, error) {
			n, err := h.svc.Like(c.Request.Context(), c.Param("id"), in.EntityID)
			if err != nil {
				return nil, err
			}
			return gin.H{"likes": n}, nil
		},
	})

	ez.Register(g.User, ez.Action[forum.NewThread, *domain.Thread]{
		Method: http.MethodPost,
		Path:   "/threads",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *forum.NewThread) (*domain.Thread, error) {
			return h.svc.CreateThread(c.Request.Context(), ez.UserID(c), in)
		},
	})

	ez.Register(g.User, ez.Action[replyIn, *domain.Reply]{
		Method: http.MethodPost,
		Path:   "/threads/:id/replies",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *replyIn) (*domain.Reply, error) {
			return h.svc.AddReply(c.Request.Context(), c.Param("id"), in.ParentID, ez.UserID(c), in.Content)
		},
	})
}
