package contact

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vitrina/internal/core/events"
	"vitrina/internal/core/mailer"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
	"vitrina/pkg/utils"
)

const MaxBodyLen = 4000

var validate = validator.New()

type Service struct {
	col        *repo.Collection[domain.ContactMessage]
	mail       mailer.Sender
	pub        events.Publisher
	adminEmail string
	l          *zap.Logger
	now        func() time.Time
}

func NewService(st *repo.Stores, mail mailer.Sender, pub events.Publisher, adminEmail string, l *zap.Logger) *Service {
	return &Service{col: st.Messages, mail: mail, pub: pub, adminEmail: adminEmail, l: l, now: time.Now}
}

type Input struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body" validate:"required"`
}

// Submit 先落库，通知邮件失败只记日志
func (s *Service) Submit(ctx context.Context, in *Input) (*domain.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Body = strings.TrimSpace(in.Body)
	if err := validate.Struct(in); err != nil {
		return nil, invalid(err)
	}
	if utf8.RuneCountInString(in.Body) > MaxBodyLen {
		return nil, domain.Invalid("body", "mensaje demasiado largo")
	}

	m := &domain.ContactMessage{
		ID:        utils.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: s.now().UTC(),
	}
	if err := s.col.Put(ctx, m); err != nil {
		return nil, err
	}
	mailer.Notify(ctx, s.l, s.mail, mailer.ContactReceived(s.adminEmail, m))
	events.Emit(ctx, s.l, s.pub, events.ContactReceived, m.ID, map[string]any{"email": m.Email})
	return m, nil
}

// invalid 取第一个失败的字段
func invalid(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			return domain.Invalid(field, "campo obligatorio")
		case "email":
			return domain.Invalid(field, "correo inválido")
		default:
			return domain.Invalid(field, "valor inválido")
		}
	}
	return domain.Invalid("", err.Error())
}

// List unread=true 只看未读
func (s *Service) List(ctx context.Context, unread bool) ([]domain.ContactMessage, error) {
	f := repo.Filter{}
	if unread {
		f.Status = "unread"
	}
	return s.col.List(ctx, f)
}

// MarkRead 逐条标记已读，失败的 id 汇总返回
func (s *Service) MarkRead(ctx context.Context, ids []string) (int, error) {
	n := 0
	err := repo.Batch(ctx, ids, func(ctx context.Context, id string) error {
		m, err := s.col.Get(ctx, id)
		if err != nil {
			return err
		}
		if !m.Read {
			m.Read = true
			if err := s.col.Put(ctx, m); err != nil {
				return err
			}
		}
		n++
		return nil
	})
	return n, err
}
