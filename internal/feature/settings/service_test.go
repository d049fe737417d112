package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitrina/internal/domain"
	"vitrina/internal/repo"
)

func defaults() domain.Settings {
	return domain.Settings{
		Tiers: domain.Tiers{
			VIP:     domain.PriceRange{Min: 100000, Max: 199999},
			Premium: domain.PriceRange{Min: 200000},
			Luxury:  domain.PriceRange{Min: 100000},
		},
		PlanPrices:     []domain.PlanPrice{{Plan: domain.PlanVIP, DurationDays: 30, Price: 49990}},
		DiscountCodes:  []domain.DiscountCode{{Code: "BIENVENIDA", Percent: 20}},
		InterviewSlots: []domain.InterviewSlot{{Date: "2026-11-02", Time: "10:00"}},
		USDRate:        950,
	}
}

func newService() *Service {
	return NewService(repo.NewStores(repo.NewMemoryBackend(), time.Second), nil, defaults(), zap.NewNop())
}

func TestGet_DefaultsWhenMissing(t *testing.T) {
	s := newService()
	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(199999), got.Tiers.VIP.Max)
	assert.Equal(t, 950.0, got.USDRate)
}

func TestPut_PersistsAndNormalizes(t *testing.T) {
	s := newService()
	in := defaults()
	in.DiscountCodes = []domain.DiscountCode{{Code: " lanzamiento ", Percent: 100}}
	in.USDRate = 980

	_, err := s.Put(context.Background(), &in)
	require.NoError(t, err)

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 980.0, got.USDRate)
	pct, ok := got.Discount("LANZAMIENTO")
	assert.True(t, ok)
	assert.Equal(t, 100, pct)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(s *domain.Settings)
		field string
	}{
		{"inverted tier", func(s *domain.Settings) { s.Tiers.VIP = domain.PriceRange{Min: 200, Max: 100} }, "tiers.vip"},
		{"negative tier", func(s *domain.Settings) { s.Tiers.Luxury.Min = -1 }, "tiers.luxury"},
		{"unknown plan", func(s *domain.Settings) { s.PlanPrices[0].Plan = "gold" }, "planPrices[0]"},
		{"zero days", func(s *domain.Settings) { s.PlanPrices[0].DurationDays = 0 }, "planPrices[0]"},
		{"duplicate price", func(s *domain.Settings) { s.PlanPrices = append(s.PlanPrices, s.PlanPrices[0]) }, "planPrices[1]"},
		{"percent zero", func(s *domain.Settings) { s.DiscountCodes[0].Percent = 0 }, "discountCodes[0]"},
		{"percent over", func(s *domain.Settings) { s.DiscountCodes[0].Percent = 101 }, "discountCodes[0]"},
		{"bad slot date", func(s *domain.Settings) { s.InterviewSlots[0].Date = "02/11/2026" }, "interviewSlots[0]"},
		{"bad slot time", func(s *domain.Settings) { s.InterviewSlots[0].Time = "25:00" }, "interviewSlots[0]"},
		{"rate", func(s *domain.Settings) { s.USDRate = 0 }, "usdRate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := defaults()
			tc.edit(&s)
			err := Validate(&s)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	ok := defaults()
	assert.NoError(t, Validate(&ok))
}

func TestPut_InvalidLeavesStoreUntouched(t *testing.T) {
	s := newService()
	bad := defaults()
	bad.USDRate = -1
	_, err := s.Put(context.Background(), &bad)
	require.ErrorIs(t, err, domain.ErrValidation)

	got, err := s.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 950.0, got.USDRate)
}
