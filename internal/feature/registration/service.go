package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"vitrina/internal/core/events"
	"vitrina/internal/core/imaging"
	"vitrina/internal/core/mailer"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
	"vitrina/pkg/utils"
)

var submittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "registros_submitted_total", Help: "Registration submissions by result"},
	[]string{"result"},
)

func init() { prometheus.MustRegister(submittedTotal) }

// SettingsSource 读取当前的套餐/折扣/面试配置
type SettingsSource interface {
	Get(ctx context.Context) (*domain.Settings, error)
}

type File struct {
	Name     string
	MimeType string
	Data     []byte
}

// Files 提交时的全部上传文件
type Files struct {
	Document           *File
	Selfie             *File
	TransferReceipt    *File
	ProfilePhotos      []File
	VerificationPhotos []File
}

func (f *Files) Uploads() Uploads {
	return Uploads{
		Document:           f.Document != nil && len(f.Document.Data) > 0,
		Selfie:             f.Selfie != nil && len(f.Selfie.Data) > 0,
		TransferReceipt:    f.TransferReceipt != nil && len(f.TransferReceipt.Data) > 0,
		ProfilePhotos:      len(f.ProfilePhotos),
		VerificationPhotos: len(f.VerificationPhotos),
	}
}

var documentMime = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type Options struct {
	MaxRecordBytes int
	AdminEmail     string
}

type Service struct {
	st       *repo.Stores
	settings SettingsSource
	enc      *imaging.Encoder
	mail     mailer.Sender
	pub      events.Publisher
	opt      Options
	l        *zap.Logger
	now      func() time.Time
}

func NewService(st *repo.Stores, settings SettingsSource, enc *imaging.Encoder, mail mailer.Sender, pub events.Publisher, opt Options, l *zap.Logger) *Service {
	if opt.MaxRecordBytes <= 0 {
		opt.MaxRecordBytes = 390 * 1024
	}
	return &Service{st: st, settings: settings, enc: enc, mail: mail, pub: pub, opt: opt, l: l, now: time.Now}
}

func (s *Service) today() time.Time { return s.now().UTC() }

// Validate 从第一步推进到 step，返回停下的步骤
func (s *Service) Validate(ctx context.Context, step Step, a *Application) (Step, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return StepCredentials, err
	}
	return NewWizard(a, cfg, s.today()).AdvanceTo(step)
}

func (s *Service) Plans(ctx context.Context, priceHour int64) ([]PlanOption, error) {
	if priceHour <= 0 {
		return nil, domain.Invalid("priceHour", "la tarifa por hora debe ser mayor a 0")
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return PlanOptions(priceHour, cfg), nil
}

// InterviewSlots 今天及以后的可选面试时间
func (s *Service) InterviewSlots(ctx context.Context) ([]domain.InterviewSlot, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today().Format(dateLayout)
	out := []domain.InterviewSlot{}
	for _, sl := range cfg.InterviewSlots {
		if sl.Date >= today {
			out = append(out, sl)
		}
	}
	return out, nil
}

func (s *Service) SuggestUsername(ctx context.Context, displayName string) (string, error) {
	if strings.TrimSpace(displayName) == "" {
		return "", domain.Invalid("displayName", "el nombre es obligatorio")
	}
	return s.uniqueUsername(ctx, DeriveUsername(displayName))
}

func (s *Service) uniqueUsername(ctx context.Context, base string) (string, error) {
	var firstErr error
	name := UniqueUsername(base, func(cand string) bool {
		if firstErr != nil {
			return false
		}
		taken, err := s.usernameTaken(ctx, cand)
		if err != nil {
			firstErr = err
			return false
		}
		return taken
	})
	if firstErr != nil {
		return "", firstErr
	}
	return name, nil
}

// usernameTaken 已存在的用户，或未被拒绝的申请
func (s *Service) usernameTaken(ctx context.Context, name string) (bool, error) {
	if _, err := s.st.Users.Get(ctx, name); err == nil {
		return true, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	regs, err := s.st.Registros.List(ctx, repo.Filter{Lookup: name})
	if err != nil {
		return false, err
	}
	for _, r := range regs {
		if r.Status != domain.StatusRechazado {
			return true, nil
		}
	}
	return false, nil
}

// Submit 在信任边界重新校验全部步骤，编码图片后以 pendiente 落库
func (s *Service) Submit(ctx context.Context, a *Application, files *Files) (*domain.Registro, error) {
	r, err := s.submit(ctx, a, files)
	switch {
	case err == nil:
		submittedTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, domain.ErrValidation):
		submittedTotal.WithLabelValues("invalid").Inc()
	case errors.Is(err, domain.ErrTooLarge):
		submittedTotal.WithLabelValues("too_large").Inc()
	default:
		submittedTotal.WithLabelValues("error").Inc()
	}
	return r, err
}

func (s *Service) submit(ctx context.Context, a *Application, files *Files) (*domain.Registro, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = &Files{}
	}
	a.Uploads = files.Uploads()
	a.Email = strings.TrimSpace(a.Email)
	a.DiscountCode = NormalizeCode(a.DiscountCode)
	if err := ValidateAll(a, cfg, s.today()); err != nil {
		return nil, err
	}

	if err := s.emailFree(ctx, a.Email); err != nil {
		return nil, err
	}
	username, err := s.pickUsername(ctx, a)
	if err != nil {
		return nil, err
	}

	m, err := s.encodeMedia(files)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(a.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	base, _ := cfg.Price(a.Plan, a.DurationDays)
	percent, _ := cfg.Discount(a.DiscountCode)
	final, label := ApplyDiscount(base, percent)
	now := s.now().UTC()

	r := &domain.Registro{
		ID:              utils.NewID(),
		Status:          domain.StatusPendiente,
		Email:           a.Email,
		Username:        username,
		PasswordHash:    hash,
		DisplayName:     strings.TrimSpace(a.DisplayName),
		Birthdate:       a.Birthdate,
		Phone:           strings.TrimSpace(a.Phone),
		City:            strings.TrimSpace(a.City),
		Nationality:     strings.TrimSpace(a.Nationality),
		HeightCm:        a.HeightCm,
		WeightKg:        a.WeightKg,
		Measurements:    a.Measurements,
		HairColor:       a.HairColor,
		EyeColor:        a.EyeColor,
		Services:        cleanList(a.Services),
		PriceHour:       a.PriceHour,
		Description:     strings.TrimSpace(a.Description),
		Plan:            a.Plan,
		DurationDays:    a.DurationDays,
		BasePrice:       base,
		DiscountCode:    a.DiscountCode,
		DiscountPercent: percent,
		FinalPrice:      final,
		PriceLabel:      label,
		Media:           *m,
		Consents:        a.Consents,
		Interview:       a.Interview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	body, err := json.Marshal(r)
	if err != nil {
		return nil, domain.Internal("encode registro", err)
	}
	if len(body) > s.opt.MaxRecordBytes {
		return nil, domain.TooLarge("registro is %d KiB, limit is %d KiB", len(body)/1024, s.opt.MaxRecordBytes/1024)
	}
	if err := s.st.Registros.Put(ctx, r); err != nil {
		return nil, err
	}

	s.l.Info("registro submitted", zap.String("id", r.ID), zap.String("username", r.Username), zap.Int("bytes", len(body)))
	mailer.Notify(ctx, s.l, s.mail, mailer.RegistroSubmitted(s.opt.AdminEmail, r))
	events.Emit(ctx, s.l, s.pub, events.RegistroSubmitted, r.ID, map[string]any{
		"username": r.Username,
		"plan":     r.Plan,
	})
	return r, nil
}

// emailFree 邮箱不能属于已有用户，也不能属于另一份待审核的申请
func (s *Service) emailFree(ctx context.Context, email string) error {
	if _, err := s.st.UserByEmail(ctx, email); err == nil {
		return domain.Conflict("email %s already registered", email)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	pending, err := s.st.Registros.List(ctx, repo.Filter{Status: string(domain.StatusPendiente)})
	if err != nil {
		return err
	}
	for _, r := range pending {
		if strings.EqualFold(r.Email, email) {
			return domain.Conflict("email %s already has a pending registro", email)
		}
	}
	return nil
}

// pickUsername 申请人填了用户名就用它，被占用报冲突；留空则由 DisplayName 生成并去重
func (s *Service) pickUsername(ctx context.Context, a *Application) (string, error) {
	chosen, err := ChosenUsername(a.Username)
	if err != nil {
		return "", err
	}
	if chosen == "" {
		return s.uniqueUsername(ctx, DeriveUsername(a.DisplayName))
	}
	taken, err := s.usernameTaken(ctx, chosen)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.Conflict("username %s already taken", chosen)
	}
	return chosen, nil
}

// encodeMedia 图片重新压缩；证件和转账凭证原样保存
func (s *Service) encodeMedia(f *Files) (*domain.RegistroMedia, error) {
	var (
		m   domain.RegistroMedia
		err error
	)
	if m.Document, err = s.keep("document", f.Document); err != nil {
		return nil, err
	}
	if f.TransferReceipt != nil {
		if m.TransferReceipt, err = s.keep("transferReceipt", f.TransferReceipt); err != nil {
			return nil, err
		}
	}
	if m.Selfie, err = s.image("selfie", f.Selfie); err != nil {
		return nil, err
	}
	m.ProfilePhotos = make([]string, 0, len(f.ProfilePhotos))
	for i := range f.ProfilePhotos {
		u, err := s.image(fmt.Sprintf("profilePhotos[%d]", i), &f.ProfilePhotos[i])
		if err != nil {
			return nil, err
		}
		m.ProfilePhotos = append(m.ProfilePhotos, u)
	}
	m.VerificationPhotos = make([]string, 0, len(f.VerificationPhotos))
	for i := range f.VerificationPhotos {
		u, err := s.image(fmt.Sprintf("verificationPhotos[%d]", i), &f.VerificationPhotos[i])
		if err != nil {
			return nil, err
		}
		m.VerificationPhotos = append(m.VerificationPhotos, u)
	}
	return &m, nil
}

func (s *Service) image(field string, f *File) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", domain.Invalid(field, "archivo vacío")
	}
	out, err := s.enc.Encode(f.Data)
	if err != nil {
		s.l.Info("image encode failed", zap.String("field", field), zap.String("file", f.Name), zap.Error(err))
		return "", domain.Invalid(field, "no se pudo procesar la imagen "+f.Name)
	}
	return imaging.DataURL("image/jpeg", out), nil
}

func (s *Service) keep(field string, f *File) (string, error) {
	if f == nil || len(f.Data) == 0 {
		return "", domain.Invalid(field, "archivo vacío")
	}
	if !documentMime[f.MimeType] {
		return "", domain.Invalid(field, "tipo de archivo no permitido")
	}
	return imaging.DataURL(f.MimeType, f.Data), nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
