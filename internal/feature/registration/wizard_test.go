package registration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/domain"
)

var today = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func testSettings() *domain.Settings {
	return &domain.Settings{
		Tiers: tiers,
		PlanPrices: []domain.PlanPrice{
			{Plan: domain.PlanVIP, DurationDays: 30, Price: 49990},
			{Plan: domain.PlanPremium, DurationDays: 30, Price: 79990},
			{Plan: domain.PlanLuxury, DurationDays: 30, Price: 119990},
		},
		DiscountCodes: []domain.DiscountCode{
			{Code: "BIENVENIDA", Percent: 20},
			{Code: "LANZAMIENTO", Percent: 100},
		},
		InterviewSlots: []domain.InterviewSlot{
			{Date: "2026-10-10", Time: "10:00"},
			{Date: "2026-11-02", Time: "10:00"},
			{Date: "2026-11-02", Time: "16:30"},
		},
		USDRate: 950,
	}
}

func validApp() *Application {
	return &Application{
		Email:           "ana@x.cl",
		Password:        "secreto123",
		ConfirmPassword: "secreto123",
		DisplayName:     "Ana María",
		Birthdate:       "1998-05-20",
		Phone:           "+56911111111",
		City:            "Santiago",
		Services:        []string{"cena"},
		PriceHour:       150000,
		Plan:            domain.PlanVIP,
		DurationDays:    30,
		Consents: domain.Consents{
			TermsAccepted: true, PrivacyAccepted: true, AdultConfirmed: true, ContentOwnership: true,
		},
		Interview: domain.InterviewSlot{Date: "2026-11-02", Time: "10:00"},
		Uploads: Uploads{
			Document: true, Selfie: true, TransferReceipt: true,
			ProfilePhotos: 3, VerificationPhotos: 2,
		},
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestValidateAll_Valid(t *testing.T) {
	assert.NoError(t, ValidateAll(validApp(), testSettings(), today))
}

func TestValidateStep_Failures(t *testing.T) {
	cases := []struct {
		name  string
		step  Step
		edit  func(a *Application)
		field string
	}{
		{"bad email", StepCredentials, func(a *Application) { a.Email = "ana@" }, "email"},
		{"short password", StepCredentials, func(a *Application) { a.Password, a.ConfirmPassword = "1234567", "1234567" }, "password"},
		{"mismatch", StepCredentials, func(a *Application) { a.ConfirmPassword = "otra-clave" }, "confirmPassword"},
		{"no name", StepIdentity, func(a *Application) { a.DisplayName = " " }, "displayName"},
		{"unusable username", StepIdentity, func(a *Application) { a.Username = "!!!" }, "username"},
		{"no birthdate", StepIdentity, func(a *Application) { a.Birthdate = "" }, "birthdate"},
		{"underage by a day", StepIdentity, func(a *Application) { a.Birthdate = "2008-10-19" }, "birthdate"},
		{"no services", StepServices, func(a *Application) { a.Services = []string{" "} }, "services"},
		{"zero price", StepServices, func(a *Application) { a.PriceHour = 0 }, "priceHour"},
		{"one verification", StepDocuments, func(a *Application) { a.Uploads.VerificationPhotos = 1 }, "verificationPhotos"},
		{"three verifications", StepDocuments, func(a *Application) { a.Uploads.VerificationPhotos = 3 }, "verificationPhotos"},
		{"six profile photos", StepDocuments, func(a *Application) { a.Uploads.ProfilePhotos = 6 }, "profilePhotos"},
		{"no selfie", StepDocuments, func(a *Application) { a.Uploads.Selfie = false }, "selfie"},
		{"no document", StepDocuments, func(a *Application) { a.Uploads.Document = false }, "document"},
		{"ineligible plan", StepPlan, func(a *Application) { a.Plan = domain.PlanPremium }, "plan"},
		{"no duration", StepPlan, func(a *Application) { a.DurationDays = 7 }, "durationDays"},
		{"unknown code", StepPlan, func(a *Application) { a.DiscountCode = "NOPE" }, "discountCode"},
		{"consent missing", StepPlan, func(a *Application) { a.Consents.ContentOwnership = false }, "consents"},
		{"no receipt", StepPlan, func(a *Application) { a.Uploads.TransferReceipt = false }, "transferReceipt"},
		{"slot not offered", StepPlan, func(a *Application) { a.Interview.Time = "11:00" }, "interview"},
		{"slot already past", StepPlan, func(a *Application) { a.Interview = domain.InterviewSlot{Date: "2026-10-10", Time: "10:00"} }, "interview"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := validApp()
			tc.edit(a)
			err := ValidateStep(tc.step, a, testSettings(), today)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.field, fieldOf(t, err))
		})
	}
}

func TestValidateStep_EighteenToday(t *testing.T) {
	a := validApp()
	a.Birthdate = "2008-10-18"
	assert.NoError(t, ValidateStep(StepIdentity, a, testSettings(), today))
}

func TestValidatePlan_SlotToday(t *testing.T) {
	s := testSettings()
	s.InterviewSlots = append(s.InterviewSlots, domain.InterviewSlot{Date: "2026-10-18", Time: "18:00"})
	a := validApp()
	a.Interview = domain.InterviewSlot{Date: "2026-10-18", Time: "18:00"}
	assert.NoError(t, ValidateStep(StepPlan, a, s, today))
}

func TestValidatePlan_FreeNeedsNoReceipt(t *testing.T) {
	a := validApp()
	a.DiscountCode = " lanzamiento "
	a.Uploads.TransferReceipt = false
	assert.NoError(t, ValidateStep(StepPlan, a, testSettings(), today))
}

func TestWizard_GatesAdvance(t *testing.T) {
	a := validApp()
	a.Birthdate = "2010-01-01"
	w := NewWizard(a, testSettings(), today)
	assert.Equal(t, StepCredentials, w.Current())

	require.NoError(t, w.Advance())
	assert.Equal(t, StepIdentity, w.Current())

	err := w.Advance()
	assert.Equal(t, "birthdate", fieldOf(t, err))
	assert.Equal(t, StepIdentity, w.Current())
	assert.False(t, w.Complete())

	w.Back()
	assert.Equal(t, StepCredentials, w.Current())
	w.Back()
	assert.Equal(t, StepCredentials, w.Current())

	a.Birthdate = "1998-05-20"
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Advance())
	}
	assert.Equal(t, StepPlan, w.Current())
	assert.True(t, w.Complete())
}

func TestWizard_AdvanceTo(t *testing.T) {
	a := validApp()
	a.Services = nil
	w := NewWizard(a, testSettings(), today)

	at, err := w.AdvanceTo(StepPlan)
	assert.Equal(t, StepServices, at)
	assert.Equal(t, "services", fieldOf(t, err))

	_, err = NewWizard(validApp(), testSettings(), today).AdvanceTo(Step(9))
	assert.Equal(t, "step", fieldOf(t, err))

	at, err = NewWizard(validApp(), testSettings(), today).AdvanceTo(StepDocuments)
	assert.NoError(t, err)
	assert.Equal(t, StepDocuments, at)
}
