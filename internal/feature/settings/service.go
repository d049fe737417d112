package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"vitrina/internal/core/cache"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
)

const (
	cacheKey = "vitrina:settings:" + domain.SettingsID
	cacheTTL = 5 * time.Minute
)

// Service 管理端配置；文档不存在时使用配置文件里的默认值
type Service struct {
	col      *repo.Collection[domain.Settings]
	cache    *cache.Cache
	defaults domain.Settings
	l        *zap.Logger
	now      func() time.Time
}

// NewService c 为 nil 时不走 redis
func NewService(st *repo.Stores, c *cache.Cache, defaults domain.Settings, l *zap.Logger) *Service {
	return &Service{col: st.Settings, cache: c, defaults: defaults, l: l, now: time.Now}
}

func (s *Service) Get(ctx context.Context) (*domain.Settings, error) {
	if s.cache == nil {
		return s.load(ctx)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, cacheKey, cacheTTL, s.load)
}

func (s *Service) load(ctx context.Context) (*domain.Settings, error) {
	v, err := s.col.Get(ctx, domain.SettingsID)
	if errors.Is(err, domain.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	return v, err
}

func (s *Service) Put(ctx context.Context, in *domain.Settings) (*domain.Settings, error) {
	Normalize(in)
	if err := Validate(in); err != nil {
		return nil, err
	}
	in.UpdatedAt = s.now().UTC()
	if err := s.col.Put(ctx, in); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
			s.l.Warn("settings cache invalidate failed", zap.Error(err))
		}
	}
	return in, nil
}

// Normalize 折扣码统一大写、去空格
func Normalize(in *domain.Settings) {
	for i := range in.DiscountCodes {
		in.DiscountCodes[i].Code = strings.ToUpper(strings.TrimSpace(in.DiscountCodes[i].Code))
	}
}

func Validate(in *domain.Settings) error {
	ranges := []struct {
		name string
		r    domain.PriceRange
	}{{"tiers.vip", in.Tiers.VIP}, {"tiers.premium", in.Tiers.Premium}, {"tiers.luxury", in.Tiers.Luxury}}
	for _, t := range ranges {
		if t.r.Min < 0 || t.r.Max < 0 {
			return domain.Invalid(t.name, "los montos no pueden ser negativos")
		}
		if t.r.Max != 0 && t.r.Max < t.r.Min {
			return domain.Invalid(t.name, "el máximo debe ser mayor o igual al mínimo")
		}
	}

	seenPrice := map[string]bool{}
	for i, pp := range in.PlanPrices {
		field := fmt.Sprintf("planPrices[%d]", i)
		switch {
		case !pp.Plan.Valid():
			return domain.Invalid(field, "plan desconocido")
		case pp.DurationDays <= 0:
			return domain.Invalid(field, "la duración debe ser positiva")
		case pp.Price < 0:
			return domain.Invalid(field, "el precio no puede ser negativo")
		}
		k := fmt.Sprintf("%s/%d", pp.Plan, pp.DurationDays)
		if seenPrice[k] {
			return domain.Invalid(field, "precio duplicado para "+k)
		}
		seenPrice[k] = true
	}

	seenCode := map[string]bool{}
	for i, d := range in.DiscountCodes {
		field := fmt.Sprintf("discountCodes[%d]", i)
		if d.Code == "" {
			return domain.Invalid(field, "código vacío")
		}
		if d.Percent < 1 || d.Percent > 100 {
			return domain.Invalid(field, "el porcentaje debe estar entre 1 y 100")
		}
		if seenCode[d.Code] {
			return domain.Invalid(field, "código duplicado "+d.Code)
		}
		seenCode[d.Code] = true
	}

	for i, sl := range in.InterviewSlots {
		field := fmt.Sprintf("interviewSlots[%d]", i)
		if _, err := time.Parse("2006-01-02", sl.Date); err != nil {
			return domain.Invalid(field, "fecha inválida")
		}
		if _, err := time.Parse("15:04", sl.Time); err != nil {
			return domain.Invalid(field, "hora inválida")
		}
	}

	if in.USDRate <= 0 {
		return domain.Invalid("usdRate", "la tasa de cambio debe ser positiva")
	}
	return nil
}
