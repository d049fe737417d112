package registration

import (
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vitrina/internal/domain"
)

const LabelFree = "GRATIS"

const dateLayout = "2006-01-02"

var clp = message.NewPrinter(language.MustParse("es-CL"))

// ComputeAge 按日历计算周岁（生日当天才加一岁）
func ComputeAge(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// EligiblePlans 按时薪返回可选套餐
func EligiblePlans(priceHour int64, t domain.Tiers) []domain.Plan {
	var out []domain.Plan
	for _, p := range domain.Plans {
		if Eligible(p, priceHour, t) {
			out = append(out, p)
		}
	}
	return out
}

func Eligible(p domain.Plan, priceHour int64, t domain.Tiers) bool {
	if priceHour <= 0 {
		return false
	}
	switch p {
	case domain.PlanVIP:
		return t.VIP.Contains(priceHour)
	case domain.PlanPremium:
		return t.Premium.Contains(priceHour)
	case domain.PlanLuxury:
		return priceHour >= t.Luxury.Min
	}
	return false
}

// ApplyDiscount round(price*(100-percent)/100)；结果为 0 时标为 GRATIS
func ApplyDiscount(price int64, percent int) (int64, string) {
	percent = min(max(percent, 0), 100)
	final := int64(math.Round(float64(price) * float64(100-percent) / 100))
	if final <= 0 {
		return 0, LabelFree
	}
	return final, FormatCLP(final)
}

func FormatCLP(v int64) string { return clp.Sprintf("$%d", v) }

// PriceToUSD 按汇率换算并取整
func PriceToUSD(clpPrice int64, rate float64) int64 {
	if rate <= 0 {
		return 0
	}
	return int64(math.Round(float64(clpPrice) / rate))
}

// PlanOption 某套餐可选的时长和价格
type PlanOption struct {
	Plan    domain.Plan    `json:"plan"`
	Options []PlanDuration `json:"options"`
}

type PlanDuration struct {
	DurationDays int    `json:"durationDays"`
	Price        int64  `json:"price"`
	Label        string `json:"label"`
}

// PlanOptions 可选套餐及其已配置的价格
func PlanOptions(priceHour int64, s *domain.Settings) []PlanOption {
	out := []PlanOption{}
	for _, p := range EligiblePlans(priceHour, s.Tiers) {
		opt := PlanOption{Plan: p, Options: []PlanDuration{}}
		for _, pp := range s.PlanPrices {
			if pp.Plan == p {
				_, label := ApplyDiscount(pp.Price, 0)
				opt.Options = append(opt.Options, PlanDuration{DurationDays: pp.DurationDays, Price: pp.Price, Label: label})
			}
		}
		out = append(out, opt)
	}
	return out
}
