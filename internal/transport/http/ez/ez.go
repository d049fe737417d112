package ez

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vitrina/internal/domain"
	mdw "vitrina/internal/transport/http/middleware"
	resp "vitrina/internal/transport/http/response"
)

// EZ 路由分组 + 日志，注册 Action 用
type EZ struct {
	g *gin.RouterGroup
	l *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ { return EZ{g: g, l: l} }

// Group 子分组，可以追加中间件
func (e EZ) Group(path string, mws ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mws...), l: e.l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.MultipartForm 取
)

// AErr 传输层自己产生的错误（参数缺失等）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Action I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/registros/:id/approve"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 userId）
	Roles   []string // 限定角色（可选）
	Handler func(c *gin.Context, in *I) (O, error)
}

// Register 在当前 EZ 下注册动作接口
func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			if UserID(c) == "" {
				c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
			if len(a.Roles) > 0 && !slices.Contains(a.Roles, c.GetString(mdw.KeyRole)) {
				c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default:
		}
		if bindErr != nil {
			e.Fail(c, bindError(bindErr))
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// UserID 鉴权中间件写入的用户 id
func UserID(c *gin.Context) string { return c.GetString(mdw.KeyUserID) }

// bindError 绑定错误转成领域错误
func bindError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.TooLarge("request body exceeds %d bytes", mbe.Limit)
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		f := ves[0].Field()
		return domain.Invalid(strings.ToLower(f[:1])+f[1:], "valor inválido ("+ves[0].Tag()+")")
	}
	return domain.Invalid("", err.Error())
}

// Fail 错误 -> 信封。依赖方故障记日志，对外返回通用提示加简短原因
func (e EZ) Fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Code >= resp.CodeServerError {
			e.logErr(c, err)
		}
		c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
		return
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusOK, resp.Fail(resp.CodeBadRequest, ve.Message, ve))
		return
	}
	var be *domain.BatchError
	if errors.As(err, &be) {
		failed := make(map[string]string, len(be.Failed))
		for id, fe := range be.Failed {
			failed[id] = fe.Error()
		}
		e.l.Warn("batch partially failed", zap.String("path", c.FullPath()), zap.Strings("ids", be.IDs()))
		c.JSON(http.StatusOK, resp.Fail(resp.CodePartial, be.Error(), gin.H{"failed": failed}))
		return
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, err.Error()))
	case domain.KindTooLarge:
		c.JSON(http.StatusOK, resp.Error(resp.CodeTooLarge, err.Error()))
	case domain.KindNotFound:
		c.JSON(http.StatusOK, resp.Error(resp.CodeNotFound, err.Error()))
	case domain.KindConflict:
		c.JSON(http.StatusOK, resp.Error(resp.CodeConflict, err.Error()))
	case domain.KindUnauthorized:
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, err.Error()))
	case domain.KindForbidden:
		c.JSON(http.StatusOK, resp.Error(resp.CodeForbidden, err.Error()))
	case domain.KindUnavailable:
		e.logErr(c, err)
		c.JSON(http.StatusOK, resp.Error(resp.CodeUnavailable, withCause("servicio no disponible, intente nuevamente", err)))
	default:
		e.logErr(c, err)
		c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, withCause("error interno", err)))
	}
}

const maxCause = 80

// withCause 只附带 domain.Error 自己的 Msg，被包装的底层错误（地址、驱动信息）不外露
func withCause(generic string, err error) string {
	var de *domain.Error
	if !errors.As(err, &de) || strings.TrimSpace(de.Msg) == "" {
		return generic
	}
	msg := strings.Join(strings.Fields(de.Msg), " ")
	if r := []rune(msg); len(r) > maxCause {
		msg = string(r[:maxCause]) + "…"
	}
	return generic + ": " + msg
}

func (e EZ) logErr(c *gin.Context, err error) {
	e.l.Error("request failed",
		zap.String("rid", c.GetString(mdw.KeyRequestID)),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
}

// Groups 用户端的两个分组：公开 / 需要登录
type Groups struct {
	Public EZ
	User   EZ
}
