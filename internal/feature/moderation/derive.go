package moderation

import (
	"slices"
	"time"

	"vitrina/internal/domain"
	"vitrina/internal/feature/registration"
)

// DeriveRecords 由审核通过的申请生成登录用户和公开资料（资料默认不可见）
func DeriveRecords(r *domain.Registro, usdRate float64, now time.Time) (*domain.User, *domain.Profile) {
	u := &domain.User{
		ID:           r.Username,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.RoleUser,
		DisplayName:  r.DisplayName,
		Phone:        r.Phone,
		ProfileID:    r.ID,
		RegistroID:   r.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	age := 0
	if birth, err := time.Parse("2006-01-02", r.Birthdate); err == nil {
		age = registration.ComputeAge(birth, now)
	}
	p := &domain.Profile{
		ID:             r.ID,
		UserID:         u.ID,
		Username:       r.Username,
		DisplayName:    r.DisplayName,
		Age:            age,
		City:           r.City,
		Nationality:    r.Nationality,
		HeightCm:       r.HeightCm,
		WeightKg:       r.WeightKg,
		Measurements:   r.Measurements,
		HairColor:      r.HairColor,
		EyeColor:       r.EyeColor,
		Services:       slices.Clone(r.Services),
		Description:    r.Description,
		PriceCLP:       r.PriceHour,
		PriceUSD:       registration.PriceToUSD(r.PriceHour, usdRate),
		Plan:           r.Plan,
		Photos:         slices.Clone(r.Media.ProfilePhotos),
		ProfileVisible: false,
		ApprovedAt:     now,
		UpdatedAt:      now,
	}
	return u, p
}
