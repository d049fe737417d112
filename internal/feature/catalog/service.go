package catalog

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vitrina/internal/domain"
	"vitrina/internal/feature/registration"
	"vitrina/internal/repo"
)

type Currency string

const (
	CLP Currency = "clp"
	USD Currency = "usd"
)

// ParseCurrency 空值按 CLP
func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CLP:
		return CLP, nil
	case USD:
		return USD, nil
	default:
		return "", domain.Invalid("currency", "moneda no soportada")
	}
}

var usd = message.NewPrinter(language.AmericanEnglish)

// Entry 目录里的一条，价格按请求的币种渲染
type Entry struct {
	domain.Profile
	Currency   Currency `json:"currency"`
	Price      int64    `json:"price"`
	PriceLabel string   `json:"priceLabel"`
}

func render(p domain.Profile, c Currency) Entry {
	e := Entry{Profile: p, Currency: c}
	if c == USD {
		e.Price = p.PriceUSD
		e.PriceLabel = usd.Sprintf("US$%d", p.PriceUSD)
	} else {
		e.Price = p.PriceCLP
		e.PriceLabel = registration.FormatCLP(p.PriceCLP)
	}
	return e
}

type Service struct {
	col    *repo.Collection[domain.Profile]
	hidden HiddenStore
	l      *zap.Logger
	now    func() time.Time
}

func NewService(st *repo.Stores, hidden HiddenStore, l *zap.Logger) *Service {
	return &Service{col: st.Profiles, hidden: hidden, l: l, now: time.Now}
}

// List 公开目录减去当前会话隐藏的条目；隐藏集合读取失败时照常返回全部
func (s *Service) List(ctx context.Context, session string, c Currency) ([]Entry, error) {
	profiles, err := s.col.List(ctx, repo.Filter{Status: repo.ProfileListed})
	if err != nil {
		return nil, err
	}
	var hidden map[string]bool
	if session != "" {
		if hidden, err = s.hidden.Members(ctx, session); err != nil {
			s.l.Warn("read hidden set failed", zap.String("session", session), zap.Error(err))
		}
	}
	out := make([]Entry, 0, len(profiles))
	for _, p := range profiles {
		if hidden[p.ID] {
			continue
		}
		out = append(out, render(p, c))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string, c Currency) (*Entry, error) {
	p, err := s.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Listed() {
		return nil, domain.NotFound("profile %s not found", id)
	}
	e := render(*p, c)
	return &e, nil
}

func requireSession(session string) error {
	if strings.TrimSpace(session) == "" {
		return domain.Invalid("session", "falta el identificador de sesión")
	}
	return nil
}

func (s *Service) Hide(ctx context.Context, session, id string) error {
	return s.HideAll(ctx, session, []string{id})
}

// HideAll 一次隐藏多条（“全部删除”只是隐藏）
func (s *Service) HideAll(ctx context.Context, session string, ids []string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := s.hidden.Add(ctx, session, ids...); err != nil {
		return domain.Unavailable("hide failed", err)
	}
	return nil
}

// Restore 清空当前会话的隐藏集合
func (s *Service) Restore(ctx context.Context, session string) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.hidden.Clear(ctx, session); err != nil {
		return domain.Unavailable("restore failed", err)
	}
	return nil
}

// SetOwnerVisibility 资料所有者自己上下线
func (s *Service) SetOwnerVisibility(ctx context.Context, userID string, visible bool) (*domain.Profile, error) {
	ps, err := s.col.List(ctx, repo.Filter{Lookup: userID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, domain.NotFound("no profile for user %s", userID)
	}
	p := &ps[0]
	if p.Deleted {
		return nil, domain.Forbidden("profile removed by admin")
	}
	return s.save(ctx, p, func(p *domain.Profile) { p.ProfileVisible = visible })
}

// SetVisibility 管理端
func (s *Service) SetVisibility(ctx context.Context, id string, visible bool) (*domain.Profile, error) {
	p, err := s.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p, func(p *domain.Profile) { p.ProfileVisible = visible })
}

// SoftDelete 标记删除，记录保留
func (s *Service) SoftDelete(ctx context.Context, id string) (*domain.Profile, error) {
	p, err := s.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, p, func(p *domain.Profile) { p.Deleted = true })
}

// All 管理端列表，包含下线和已删除的
func (s *Service) All(ctx context.Context) ([]domain.Profile, error) {
	return s.col.List(ctx, repo.Filter{})
}

func (s *Service) save(ctx context.Context, p *domain.Profile, mutate func(*domain.Profile)) (*domain.Profile, error) {
	mutate(p)
	p.UpdatedAt = s.now().UTC()
	if err := s.col.Put(ctx, p); err != nil {
		return nil, err
	}
	s.l.Info("profile updated", zap.String("id", p.ID), zap.Bool("visible", p.ProfileVisible), zap.Bool("deleted", p.Deleted))
	return p, nil
}
