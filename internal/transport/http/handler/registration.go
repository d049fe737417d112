package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vitrina/internal/domain"
	"vitrina/internal/feature/registration"
	"vitrina/internal/transport/http/ez"
)

type Registration struct {
	svc *registration.Service
}

func NewRegistration(svc *registration.Service) *Registration { return &Registration{svc: svc} }

func (h *Registration) Priority() int { return 10 }

type stepOut struct {
	Step     registration.Step `json:"step"`
	StepName string            `json:"stepName"`
	Valid    bool              `json:"valid"`
}

type submitOut struct {
	ID         string        `json:"id"`
	Username   string        `json:"username"`
	Status     domain.Status `json:"status"`
	FinalPrice int64         `json:"finalPrice"`
	PriceLabel string        `json:"priceLabel"`
}

type plansQ struct {
	PriceHour int64 `form:"priceHour" binding:"required"`
}

type usernameQ struct {
	DisplayName string `form:"displayName" binding:"required"`
}

func (h *Registration) MountAPI(g ez.Groups) {
	// POST /registros/validate/:step  逐步校验，不落库
	ez.Register(g.Public, ez.Action[registration.Application, stepOut]{
		Method: http.MethodPost,
		Path:   "/registros/validate/:step",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *registration.Application) (stepOut, error) {
			n, err := strconv.Atoi(c.Param("step"))
			step := registration.Step(n)
			if err != nil || !step.Valid() {
				return stepOut{}, ez.BadRequest("paso inválido")
			}
			reached, err := h.svc.Validate(c.Request.Context(), step, in)
			if err != nil {
				return stepOut{}, err
			}
			return stepOut{Step: reached, StepName: reached.String(), Valid: true}, nil
		},
	})

	// POST /registros  multipart: data + 文件
	ez.Register(g.Public, ez.Action[struct{}, submitOut]{
		Method: http.MethodPost,
		Path:   "/registros",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (submitOut, error) {
			app, files, err := readSubmission(c)
			if err != nil {
				return submitOut{}, err
			}
			r, err := h.svc.Submit(c.Request.Context(), app, files)
			if err != nil {
				return submitOut{}, err
			}
			return submitOut{
				ID:         r.ID,
				Username:   r.Username,
				Status:     r.Status,
				FinalPrice: r.FinalPrice,
				PriceLabel: r.PriceLabel,
			}, nil
		},
	})

	ez.Register(g.Public, ez.Action[plansQ, []registration.PlanOption]{
		Method: http.MethodGet,
		Path:   "/registros/plans",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *plansQ) ([]registration.PlanOption, error) {
			return h.svc.Plans(c.Request.Context(), in.PriceHour)
		},
	})

	ez.Register(g.Public, ez.Action[struct{}, []domain.InterviewSlot]{
		Method: http.MethodGet,
		Path:   "/registros/interview-slots",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.InterviewSlot, error) {
			return h.svc.InterviewSlots(c.Request.Context())
		},
	})

	ez.Register(g.Public, ez.Action[usernameQ, gin.H]{
		Method: http.MethodGet,
		Path:   "/registros/username",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *usernameQ) (gin.H, error) {
			u, err := h.svc.SuggestUsername(c.Request.Context(), in.DisplayName)
			if err != nil {
				return nil, err
			}
			return gin.H{"username": u}, nil
		},
	})
}

// readSubmission 解析 multipart：data 是 JSON，其余是文件字段
func readSubmission(c *gin.Context) (*registration.Application, *registration.Files, error) {
	form, err := c.MultipartForm()
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, nil, domain.TooLarge("request body exceeds %d bytes", mbe.Limit)
		}
		return nil, nil, ez.BadRequest("invalid multipart form: " + err.Error())
	}
	raw := form.Value["data"]
	if len(raw) == 0 {
		return nil, nil, domain.Invalid("data", "faltan los datos del formulario")
	}
	var app registration.Application
	dec := json.NewDecoder(strings.NewReader(raw[0]))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&app); err != nil {
		return nil, nil, domain.Invalid("data", err.Error())
	}

	files := &registration.Files{}
	one := func(field string) (*registration.File, error) {
		hs := form.File[field]
		if len(hs) == 0 {
			return nil, nil
		}
		if len(hs) > 1 {
			return nil, domain.Invalid(field, "solo se admite un archivo")
		}
		return readFile(field, hs[0])
	}
	many := func(field string) ([]registration.File, error) {
		out := make([]registration.File, 0, len(form.File[field]))
		for i, fh := range form.File[field] {
			f, err := readFile(fmt.Sprintf("%s[%d]", field, i), fh)
			if err != nil {
				return nil, err
			}
			out = append(out, *f)
		}
		return out, nil
	}
	if files.Document, err = one("document"); err != nil {
		return nil, nil, err
	}
	if files.Selfie, err = one("selfie"); err != nil {
		return nil, nil, err
	}
	if files.TransferReceipt, err = one("transferReceipt"); err != nil {
		return nil, nil, err
	}
	if files.ProfilePhotos, err = many("profilePhotos"); err != nil {
		return nil, nil, err
	}
	if files.VerificationPhotos, err = many("verificationPhotos"); err != nil {
		return nil, nil, err
	}
	return &app, files, nil
}

func readFile(field string, fh *multipart.FileHeader) (*registration.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, domain.Invalid(field, "no se pudo leer el archivo")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.Invalid(field, "no se pudo leer el archivo")
	}
	mime := fh.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}
	return &registration.File{Name: fh.Filename, MimeType: mime, Data: data}, nil
}
