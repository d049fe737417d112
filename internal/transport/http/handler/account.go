package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vitrina/internal/feature/account"
	"vitrina/internal/transport/http/ez"
)

type Account struct {
	svc *account.Service
}

func NewAccount(svc *account.Service) *Account { return &Account{svc: svc} }

func (h *Account) Priority() int { return 1 }

type loginIn struct {
	Login    string `json:"login"    binding:"required,max=254"` // 邮箱或用户名
	Password string `json:"password" binding:"required"`
}

type usersQ struct {
	Role string `form:"role"`
}

type saveUsersIn struct {
	Users []account.UserUpdate `json:"users" binding:"required,min=1,dive"`
}

func (h *Account) MountAPI(g ez.Groups) {
	ez.Register(g.Public, ez.Action[loginIn, *account.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*account.Session, error) {
			return h.svc.Login(c.Request.Context(), in.Login, in.Password)
		},
	})

	ez.Register(g.User, ez.Action[struct{}, *account.Account]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*account.Account, error) {
			return h.svc.Me(c.Request.Context(), ez.UserID(c))
		},
	})
}

func (h *Account) MountAdmin(admin ez.EZ) {
	ez.Register(admin, ez.Action[usersQ, []account.Account]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *usersQ) ([]account.Account, error) {
			return h.svc.List(c.Request.Context(), in.Role)
		},
	})

	// PUT /users  批量保存，部分失败返回 207 + 失败的 id
	ez.Register(admin, ez.Action[saveUsersIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/users",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *saveUsersIn) (gin.H, error) {
			n, err := h.svc.SaveUsers(c.Request.Context(), in.Users)
			if err != nil {
				return nil, err
			}
			return gin.H{"saved": n}, nil
		},
	})
}
