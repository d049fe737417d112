package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/contact"
	"vitrina/internal/transport/http/ez"
)

type Contact struct {
	svc *contact.Service
}

func NewContact(svc *contact.Service) *Contact { return &Contact{svc: svc} }

type messagesQ struct {
	Unread bool `form:"unread"`
}

type idsIn struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

func (h *Contact) MountAPI(g ez.Groups) {
	ez.Register(g.Public, ez.Action[contact.Input, gin.H]{
		Method: http.MethodPost,
		Path:   "/contact",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *contact.Input) (gin.H, error) {
			m, err := h.svc.Submit(c.Request.Context(), in)
			if err != nil {
				return nil, err
			}
			return gin.H{"id": m.ID}, nil
		},
	})
}

func (h *Contact) MountAdmin(admin ez.EZ) {
	ez.Register(admin, ez.Action[messagesQ, []domain.ContactMessage]{
		Method: http.MethodGet,
		Path:   "/messages",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *messagesQ) ([]domain.ContactMessage, error) {
			return h.svc.List(c.Request.Context(), in.Unread)
		},
	})

	ez.Register(admin, ez.Action[idsIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/messages/read",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *idsIn) (gin.H, error) {
			n, err := h.svc.MarkRead(c.Request.Context(), in.IDs)
			if err != nil {
				return nil, err
			}
			return gin.H{"updated": n}, nil
		},
	})
}
