package domain

import "time"

// Profile 公开目录条目，只含对外字段
type Profile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Age            int       `json:"age"`
	City           string    `json:"city"`
	Nationality    string    `json:"nationality,omitempty"`
	HeightCm       int       `json:"heightCm,omitempty"`
	WeightKg       int       `json:"weightKg,omitempty"`
	Measurements   string    `json:"measurements,omitempty"`
	HairColor      string    `json:"hairColor,omitempty"`
	EyeColor       string    `json:"eyeColor,omitempty"`
	Services       []string  `json:"services"`
	Description    string    `json:"description,omitempty"`
	PriceCLP       int64     `json:"priceClp"`
	PriceUSD       int64     `json:"priceUsd"`
	Plan           Plan      `json:"plan"`
	Photos         []string  `json:"photos,omitempty"`
	ProfileVisible bool      `json:"profileVisible"`
	Deleted        bool      `json:"deleted"`
	ApprovedAt     time.Time `json:"approvedAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Listed 是否出现在公开目录
func (p *Profile) Listed() bool { return p.ProfileVisible && !p.Deleted }
