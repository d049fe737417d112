package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/core/media"
	"vitrina/internal/transport/http/ez"
)

type Media struct {
	store media.Store
}

func NewMedia(store media.Store) *Media { return &Media{store: store} }

type uploadIn struct {
	FileName string `json:"fileName" binding:"required,max=200"`
	MimeType string `json:"mimeType" binding:"required"`
	Folder   string `json:"folder"   binding:"required"`
}

func (h *Media) MountAPI(g ez.Groups) {
	// 预签名 PUT，客户端直传对象存储
	ez.Register(g.User, ez.Action[uploadIn, *media.Upload]{
		Method: http.MethodPost,
		Path:   "/media/upload-url",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *uploadIn) (*media.Upload, error) {
			return h.store.PresignUpload(c.Request.Context(), ez.UserID(c), in.FileName, in.MimeType, in.Folder)
		},
	})

	ez.Register(g.User, ez.Action[struct{}, []string]{
		Method: http.MethodGet,
		Path:   "/media",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]string, error) {
			keys, err := h.store.ListOwner(c.Request.Context(), ez.UserID(c))
			if keys == nil && err == nil {
				keys = []string{}
			}
			return keys, err
		},
	})
}
