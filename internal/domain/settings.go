package domain

import "time"

// Plan 套餐
type Plan string

const (
	PlanVIP     Plan = "vip"
	PlanPremium Plan = "premium"
	PlanLuxury  Plan = "luxury"
)

var Plans = []Plan{PlanVIP, PlanPremium, PlanLuxury}

func (p Plan) Valid() bool {
	switch p {
	case PlanVIP, PlanPremium, PlanLuxury:
		return true
	}
	return false
}

// PriceRange 价格区间，Max 为 0 表示无上限
type PriceRange struct {
	Min int64 `json:"min" mapstructure:"min"`
	Max int64 `json:"max" mapstructure:"max"`
}

func (r PriceRange) Contains(v int64) bool {
	return v >= r.Min && (r.Max == 0 || v <= r.Max)
}

// Tiers 套餐资格的价格边界（tarifaMin / tarifaMax）
type Tiers struct {
	VIP     PriceRange `json:"vip" mapstructure:"vip"`
	Premium PriceRange `json:"premium" mapstructure:"premium"`
	Luxury  PriceRange `json:"luxury" mapstructure:"luxury"`
}

type PlanPrice struct {
	Plan         Plan  `json:"plan" mapstructure:"plan"`
	DurationDays int   `json:"durationDays" mapstructure:"duration_days"`
	Price        int64 `json:"price" mapstructure:"price"`
}

type DiscountCode struct {
	Code    string `json:"code" mapstructure:"code"`
	Percent int    `json:"percent" mapstructure:"percent"`
}

// Settings 管理端配置（单文档 global）
type Settings struct {
	Tiers          Tiers           `json:"tiers" mapstructure:"tiers"`
	PlanPrices     []PlanPrice     `json:"planPrices" mapstructure:"plan_prices"`
	DiscountCodes  []DiscountCode  `json:"discountCodes" mapstructure:"discount_codes"`
	InterviewSlots []InterviewSlot `json:"interviewSlots" mapstructure:"interview_slots"`
	USDRate        float64         `json:"usdRate" mapstructure:"usd_rate"`
	UpdatedAt      time.Time       `json:"updatedAt" mapstructure:"-"`
}

const SettingsID = "global"

// Price 查找套餐在某时长下的价格
func (s *Settings) Price(p Plan, days int) (int64, bool) {
	for _, pp := range s.PlanPrices {
		if pp.Plan == p && pp.DurationDays == days {
			return pp.Price, true
		}
	}
	return 0, false
}

// Discount 折扣码（大小写不敏感由调用方处理）
func (s *Settings) Discount(code string) (int, bool) {
	for _, d := range s.DiscountCodes {
		if d.Code == code {
			return d.Percent, true
		}
	}
	return 0, false
}

func (s *Settings) HasSlot(slot InterviewSlot) bool {
	for _, sl := range s.InterviewSlots {
		if sl == slot {
			return true
		}
	}
	return false
}
