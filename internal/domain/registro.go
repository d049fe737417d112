package domain

import "time"

// Registro 待审核的注册申请
type Registro struct {
	ID     string `json:"id"`
	Status Status `json:"status"`

	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`

	DisplayName string `json:"displayName"`
	Birthdate   string `json:"birthdate"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	Nationality string `json:"nationality,omitempty"`

	HeightCm     int    `json:"heightCm,omitempty"`
	WeightKg     int    `json:"weightKg,omitempty"`
	Measurements string `json:"measurements,omitempty"`
	HairColor    string `json:"hairColor,omitempty"`
	EyeColor     string `json:"eyeColor,omitempty"`

	Services    []string `json:"services"`
	PriceHour   int64    `json:"priceHour"`
	Description string   `json:"description,omitempty"`

	Plan            Plan   `json:"plan"`
	DurationDays    int    `json:"durationDays"`
	BasePrice       int64  `json:"basePrice"`
	DiscountCode    string `json:"discountCode,omitempty"`
	DiscountPercent int    `json:"discountPercent,omitempty"`
	FinalPrice      int64  `json:"finalPrice"`
	PriceLabel      string `json:"priceLabel"`

	Media     RegistroMedia `json:"media"`
	Consents  Consents      `json:"consents"`
	Interview InterviewSlot `json:"interview"`

	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy   string     `json:"reviewedBy,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`
	UserID       string     `json:"userId,omitempty"`
	ProfileID    string     `json:"profileId,omitempty"`
}

// RegistroMedia 已编码的文件（data URL）
type RegistroMedia struct {
	Document           string   `json:"document"`
	Selfie             string   `json:"selfie"`
	TransferReceipt    string   `json:"transferReceipt"`
	ProfilePhotos      []string `json:"profilePhotos"`
	VerificationPhotos []string `json:"verificationPhotos"`
}

// Consents 四项法律声明，提交时必须全部为 true
type Consents struct {
	TermsAccepted    bool `json:"termsAccepted"`
	PrivacyAccepted  bool `json:"privacyAccepted"`
	AdultConfirmed   bool `json:"adultConfirmed"`
	ContentOwnership bool `json:"contentOwnership"`
}

func (c Consents) All() bool {
	return c.TermsAccepted && c.PrivacyAccepted && c.AdultConfirmed && c.ContentOwnership
}

type InterviewSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
