package moderation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"vitrina/internal/core/events"
	"vitrina/internal/core/imaging"
	"vitrina/internal/core/mailer"
	"vitrina/internal/core/media"
	"vitrina/internal/domain"
	"vitrina/internal/feature/registration"
	"vitrina/internal/repo"
)

var reviewedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "moderation_decisions_total", Help: "Moderation decisions by queue and outcome"},
	[]string{"queue", "decision"},
)

func init() { prometheus.MustRegister(reviewedTotal) }

type Service struct {
	st       *repo.Stores
	settings registration.SettingsSource
	media    media.Store
	mail     mailer.Sender
	pub      events.Publisher
	l        *zap.Logger
	now      func() time.Time

	Registros *Queue[domain.Registro]
	Threads   *Queue[domain.Thread]
}

func NewService(st *repo.Stores, settings registration.SettingsSource, ms media.Store, mail mailer.Sender, pub events.Publisher, l *zap.Logger) *Service {
	return &Service{
		st:        st,
		settings:  settings,
		media:     ms,
		mail:      mail,
		pub:       pub,
		l:         l,
		now:       time.Now,
		Registros: NewQueue(st.Registros, func(r *domain.Registro) *domain.Status { return &r.Status }),
		Threads:   NewQueue(st.Threads, func(t *domain.Thread) *domain.Status { return &t.Status }),
	}
}

// Summary 列表里不带媒体数据
type Summary struct {
	ID          string               `json:"id"`
	Status      domain.Status        `json:"status"`
	Email       string               `json:"email"`
	Username    string               `json:"username"`
	DisplayName string               `json:"displayName"`
	City        string               `json:"city"`
	PriceHour   int64                `json:"priceHour"`
	Plan        domain.Plan          `json:"plan"`
	PriceLabel  string               `json:"priceLabel"`
	Interview   domain.InterviewSlot `json:"interview"`
	CreatedAt   time.Time            `json:"createdAt"`
	ReviewedAt  *time.Time           `json:"reviewedAt,omitempty"`
}

// Summarize 列表和审核结果用的摘要
func Summarize(r *domain.Registro) Summary {
	return Summary{
		ID:          r.ID,
		Status:      r.Status,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		City:        r.City,
		PriceHour:   r.PriceHour,
		Plan:        r.Plan,
		PriceLabel:  r.PriceLabel,
		Interview:   r.Interview,
		CreatedAt:   r.CreatedAt,
		ReviewedAt:  r.ReviewedAt,
	}
}

// ListRegistros status 为空时默认 pendiente
func (s *Service) ListRegistros(ctx context.Context, st domain.Status) ([]Summary, error) {
	if st == "" {
		st = domain.StatusPendiente
	}
	regs, err := s.Registros.List(ctx, st)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(regs))
	for i := range regs {
		out = append(out, Summarize(&regs[i]))
	}
	return out, nil
}

func (s *Service) GetRegistro(ctx context.Context, id string) (*domain.Registro, error) {
	return s.st.Registros.Get(ctx, id)
}

// Approval 审核通过的结果
type Approval struct {
	Registro *domain.Registro `json:"registro"`
	User     *domain.User     `json:"user"`
	Profile  *domain.Profile  `json:"profile"`
	Changed  bool             `json:"changed"`
}

// ApproveRegistro 一个事务内写入 User、Profile 和状态；失败时申请保持 pendiente
func (s *Service) ApproveRegistro(ctx context.Context, id, operator string) (*Approval, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := &Approval{}

	err = s.st.Tx(ctx, func(tx *repo.Stores) error {
		r, err := tx.Registros.Get(ctx, id)
		if err != nil {
			return err
		}
		out.Registro = r
		changed, err := r.Status.Transition(domain.StatusAprobado)
		if err != nil || !changed {
			return err
		}

		if _, err := tx.Users.Get(ctx, r.Username); err == nil {
			return domain.Conflict("user %s already exists", r.Username)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if _, err := tx.UserByEmail(ctx, r.Email); err == nil {
			return domain.Conflict("email %s already registered", r.Email)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		u, p := DeriveRecords(r, cfg.USDRate, now)
		if err := tx.Users.Put(ctx, u); err != nil {
			return err
		}
		if err := tx.Profiles.Put(ctx, p); err != nil {
			return err
		}
		r.Status = domain.StatusAprobado
		r.ReviewedAt = &now
		r.ReviewedBy = operator
		r.UserID = u.ID
		r.ProfileID = p.ID
		r.UpdatedAt = now
		if err := tx.Registros.Put(ctx, r); err != nil {
			return err
		}
		out.User, out.Profile, out.Changed = u, p, true
		return nil
	})
	if err != nil {
		reviewedTotal.WithLabelValues("registros", "approve_failed").Inc()
		return nil, err
	}
	if !out.Changed {
		return out, nil
	}

	reviewedTotal.WithLabelValues("registros", "approved").Inc()
	s.l.Info("registro approved", zap.String("id", id), zap.String("user", out.User.ID), zap.String("by", operator))
	s.publishPhotos(ctx, out.Profile)
	mailer.Notify(ctx, s.l, s.mail, mailer.Welcome(out.Registro))
	events.Emit(ctx, s.l, s.pub, events.RegistroApproved, id, map[string]any{
		"userId":    out.User.ID,
		"profileId": out.Profile.ID,
	})
	return out, nil
}

// publishPhotos 把资料照片从 data URL 搬到对象存储；任何一张失败就保留原样
func (s *Service) publishPhotos(ctx context.Context, p *domain.Profile) {
	if _, off := s.media.(media.Nop); off || len(p.Photos) == 0 {
		return
	}
	urls := make([]string, 0, len(p.Photos))
	put := 0
	for _, ph := range p.Photos {
		if !strings.HasPrefix(ph, "data:") {
			urls = append(urls, ph)
			continue
		}
		mime, data, err := imaging.ParseDataURL(ph)
		if err != nil {
			s.l.Warn("profile photo decode failed", zap.String("profile", p.ID), zap.Error(err))
			s.discardUploads(ctx, p.UserID, put)
			return
		}
		u, err := s.media.Put(ctx, p.UserID, media.FolderProfile, "foto", mime, data)
		if err != nil {
			s.l.Warn("profile photo upload failed", zap.String("profile", p.ID), zap.Error(err))
			s.discardUploads(ctx, p.UserID, put)
			return
		}
		put++
		urls = append(urls, u)
	}
	p.Photos = urls
	p.UpdatedAt = s.now().UTC()
	if err := s.st.Profiles.Put(ctx, p); err != nil {
		s.l.Warn("profile photo urls not saved", zap.String("profile", p.ID), zap.Error(err))
		s.discardUploads(ctx, p.UserID, put)
	}
}

// discardUploads 半途失败时清掉刚上传的对象；新账号的 <owner>/ 下不会有别的文件
func (s *Service) discardUploads(ctx context.Context, owner string, uploaded int) {
	if uploaded == 0 {
		return
	}
	if _, err := s.media.DeleteOwner(ctx, owner); err != nil {
		s.l.Warn("orphan profile photos left", zap.String("owner", owner), zap.Error(err))
	}
}

// RejectRegistro 软终态：记录保留，离开待审队列
func (s *Service) RejectRegistro(ctx context.Context, id, operator, reason string) (*domain.Registro, error) {
	now := s.now().UTC()
	reason = strings.TrimSpace(reason)
	r, changed, err := s.Registros.Transition(ctx, id, domain.StatusRechazado, func(r *domain.Registro) {
		r.ReviewedAt = &now
		r.ReviewedBy = operator
		r.RejectReason = reason
		r.UpdatedAt = now
	})
	if err != nil || !changed {
		return r, err
	}
	reviewedTotal.WithLabelValues("registros", "rejected").Inc()
	s.l.Info("registro rejected", zap.String("id", id), zap.String("by", operator))
	mailer.Notify(ctx, s.l, s.mail, mailer.Rejected(r, reason))
	events.Emit(ctx, s.l, s.pub, events.RegistroRejected, id, map[string]any{"reason": reason})
	return r, nil
}

// DeleteRegistro 管理员硬删除，并尽力清理该用户名下的媒体
func (s *Service) DeleteRegistro(ctx context.Context, id string) error {
	r, err := s.st.Registros.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.st.Registros.Delete(ctx, id); err != nil {
		return err
	}
	reviewedTotal.WithLabelValues("registros", "deleted").Inc()
	if n, err := s.media.DeleteOwner(ctx, r.Username); err != nil {
		s.l.Warn("media purge failed", zap.String("owner", r.Username), zap.Error(err))
	} else if n > 0 {
		s.l.Info("media purged", zap.String("owner", r.Username), zap.Int("objects", n))
	}
	return nil
}

func (s *Service) PendingThreads(ctx context.Context) ([]domain.Thread, error) {
	return s.Threads.Pending(ctx)
}

func (s *Service) ApproveThread(ctx context.Context, id string) (*domain.Thread, error) {
	return s.reviewThread(ctx, id, domain.StatusAprobado)
}

func (s *Service) RejectThread(ctx context.Context, id string) (*domain.Thread, error) {
	return s.reviewThread(ctx, id, domain.StatusRechazado)
}

func (s *Service) reviewThread(ctx context.Context, id string, to domain.Status) (*domain.Thread, error) {
	now := s.now().UTC()
	t, changed, err := s.Threads.Transition(ctx, id, to, func(t *domain.Thread) { t.UpdatedAt = now })
	if err == nil && changed {
		reviewedTotal.WithLabelValues("threads", string(to)).Inc()
	}
	return t, err
}

func (s *Service) DeleteThread(ctx context.Context, id string) error {
	if err := s.st.Threads.Delete(ctx, id); err != nil {
		return err
	}
	reviewedTotal.WithLabelValues("threads", "deleted").Inc()
	return nil
}
