package registration

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"vitrina/internal/domain"
)

type Step int

const (
	StepCredentials Step = iota + 1
	StepIdentity
	StepServices
	StepDocuments
	StepPlan
)

const (
	MinAge                = 18
	MinPasswordLen        = 8
	MaxProfilePhotos      = 5
	RequiredVerifications = 2
)

func (s Step) Valid() bool { return s >= StepCredentials && s <= StepPlan }

func (s Step) String() string {
	switch s {
	case StepCredentials:
		return "credenciales"
	case StepIdentity:
		return "identidad"
	case StepServices:
		return "servicios"
	case StepDocuments:
		return "documentos"
	case StepPlan:
		return "plan"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Application 向导收集的数据（multipart 里的 data 字段）
type Application struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`

	DisplayName string `json:"displayName"`
	// 留空则由 DisplayName 生成
	Username    string `json:"username"`
	Birthdate   string `json:"birthdate"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Nationality string `json:"nationality"`

	HeightCm     int    `json:"heightCm"`
	WeightKg     int    `json:"weightKg"`
	Measurements string `json:"measurements"`
	HairColor    string `json:"hairColor"`
	EyeColor     string `json:"eyeColor"`

	Services    []string `json:"services"`
	PriceHour   int64    `json:"priceHour"`
	Description string   `json:"description"`

	Plan         domain.Plan          `json:"plan"`
	DurationDays int                  `json:"durationDays"`
	DiscountCode string               `json:"discountCode"`
	Consents     domain.Consents      `json:"consents"`
	Interview    domain.InterviewSlot `json:"interview"`

	// 客户端逐步校验时上报已选文件数量；提交时以实际文件为准
	Uploads Uploads `json:"uploads"`
}

type Uploads struct {
	Document           bool `json:"document"`
	Selfie             bool `json:"selfie"`
	TransferReceipt    bool `json:"transferReceipt"`
	ProfilePhotos      int  `json:"profilePhotos"`
	VerificationPhotos int  `json:"verificationPhotos"`
}

var validate = validator.New()

// ValidateStep 只校验某一步，不落库
func ValidateStep(step Step, a *Application, s *domain.Settings, today time.Time) error {
	switch step {
	case StepCredentials:
		return validateCredentials(a)
	case StepIdentity:
		return validateIdentity(a, today)
	case StepServices:
		return validateServices(a)
	case StepDocuments:
		return validateDocuments(a)
	case StepPlan:
		return validatePlan(a, s, today)
	}
	return domain.Invalid("step", "paso desconocido")
}

// ValidateAll 按顺序校验全部步骤，返回第一个错误
func ValidateAll(a *Application, s *domain.Settings, today time.Time) error {
	for st := StepCredentials; st <= StepPlan; st++ {
		if err := ValidateStep(st, a, s, today); err != nil {
			return err
		}
	}
	return nil
}

func validateCredentials(a *Application) error {
	if err := validate.Var(strings.TrimSpace(a.Email), "required,email"); err != nil {
		return domain.Invalid("email", "correo electrónico inválido")
	}
	if len(a.Password) < MinPasswordLen {
		return domain.Invalid("password", fmt.Sprintf("la contraseña debe tener al menos %d caracteres", MinPasswordLen))
	}
	if a.Password != a.ConfirmPassword {
		return domain.Invalid("confirmPassword", "las contraseñas no coinciden")
	}
	return nil
}

func validateIdentity(a *Application, today time.Time) error {
	if strings.TrimSpace(a.DisplayName) == "" {
		return domain.Invalid("displayName", "el nombre es obligatorio")
	}
	if _, err := ChosenUsername(a.Username); err != nil {
		return err
	}
	if a.Birthdate == "" {
		return domain.Invalid("birthdate", "la fecha de nacimiento es obligatoria")
	}
	birth, err := time.Parse(dateLayout, a.Birthdate)
	if err != nil {
		return domain.Invalid("birthdate", "fecha de nacimiento inválida")
	}
	if birth.After(today) {
		return domain.Invalid("birthdate", "fecha de nacimiento en el futuro")
	}
	if ComputeAge(birth, today) < MinAge {
		return domain.Invalid("birthdate", "debes ser mayor de 18 años")
	}
	if strings.TrimSpace(a.Phone) == "" {
		return domain.Invalid("phone", "el teléfono es obligatorio")
	}
	if strings.TrimSpace(a.City) == "" {
		return domain.Invalid("city", "la ciudad es obligatoria")
	}
	return nil
}

func validateServices(a *Application) error {
	n := 0
	for _, s := range a.Services {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	if n == 0 {
		return domain.Invalid("services", "selecciona al menos un servicio")
	}
	if a.PriceHour <= 0 {
		return domain.Invalid("priceHour", "la tarifa por hora debe ser mayor a 0")
	}
	return nil
}

func validateDocuments(a *Application) error {
	u := a.Uploads
	switch {
	case !u.Document:
		return domain.Invalid("document", "falta el documento de identidad")
	case !u.Selfie:
		return domain.Invalid("selfie", "falta la selfie")
	case u.VerificationPhotos != RequiredVerifications:
		return domain.Invalid("verificationPhotos", fmt.Sprintf("se requieren exactamente %d fotos de verificación", RequiredVerifications))
	case u.ProfilePhotos > MaxProfilePhotos:
		return domain.Invalid("profilePhotos", fmt.Sprintf("máximo %d fotos de perfil", MaxProfilePhotos))
	}
	return nil
}

func validatePlan(a *Application, s *domain.Settings, today time.Time) error {
	if !a.Plan.Valid() {
		return domain.Invalid("plan", "selecciona un plan")
	}
	if !Eligible(a.Plan, a.PriceHour, s.Tiers) {
		return domain.Invalid("plan", "el plan no corresponde a tu tarifa")
	}
	price, ok := s.Price(a.Plan, a.DurationDays)
	if !ok {
		return domain.Invalid("durationDays", "duración no disponible para el plan")
	}
	percent := 0
	if code := NormalizeCode(a.DiscountCode); code != "" {
		if percent, ok = s.Discount(code); !ok {
			return domain.Invalid("discountCode", "código de descuento inválido")
		}
	}
	if !a.Consents.All() {
		return domain.Invalid("consents", "debes aceptar todas las declaraciones")
	}
	// plan gratuito no requiere comprobante
	if final, _ := ApplyDiscount(price, percent); final > 0 && !a.Uploads.TransferReceipt {
		return domain.Invalid("transferReceipt", "falta el comprobante de transferencia")
	}
	if !s.HasSlot(a.Interview) || a.Interview.Date < today.Format(dateLayout) {
		return domain.Invalid("interview", "horario de entrevista no disponible")
	}
	return nil
}

func NormalizeCode(code string) string { return strings.ToUpper(strings.TrimSpace(code)) }

// Wizard 五步向导的状态机：当前步骤校验通过才能前进
type Wizard struct {
	step     Step
	app      *Application
	settings *domain.Settings
	today    time.Time
}

func NewWizard(a *Application, s *domain.Settings, today time.Time) *Wizard {
	return &Wizard{step: StepCredentials, app: a, settings: s, today: today}
}

func (w *Wizard) Current() Step { return w.step }

// Advance 校验当前步骤；通过则前进一步（最后一步停留）
func (w *Wizard) Advance() error {
	if err := ValidateStep(w.step, w.app, w.settings, w.today); err != nil {
		return err
	}
	if w.step < StepPlan {
		w.step++
	}
	return nil
}

func (w *Wizard) Back() {
	if w.step > StepCredentials {
		w.step--
	}
}

// AdvanceTo 从第一步前进到 target，返回停下的步骤和原因
func (w *Wizard) AdvanceTo(target Step) (Step, error) {
	if !target.Valid() {
		return w.step, domain.Invalid("step", "paso desconocido")
	}
	for w.step < target {
		if err := w.Advance(); err != nil {
			return w.step, err
		}
	}
	return w.step, ValidateStep(w.step, w.app, w.settings, w.today)
}

// Complete 全部五步都通过
func (w *Wizard) Complete() bool {
	return ValidateAll(w.app, w.settings, w.today) == nil
}
