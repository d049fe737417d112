package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/domain"
)

const sample = `
app:
  http:
    port: 9090
jwt:
  secret: s3cret
db:
  driver: memory
plans:
  tiers:
    vip: { min: 100000, max: 199999 }
    premium: { min: 200000, max: 0 }
  plan_prices:
    - { plan: vip, duration_days: 30, price: 49990 }
  discount_codes:
    - { code: BIENVENIDA, percent: 20 }
  interview_slots:
    - { date: "2026-11-02", time: "10:00" }
`

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o600))
	return p
}

func TestLoad_FileDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "from-env")
	c := Load(writeConfig(t))

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "memory", c.DB.Driver)
	// 默认值
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, 5, c.Store.TimeoutSec)
	assert.Equal(t, 390*1024, c.Registration.MaxRecordBytes)
	assert.Equal(t, 1280, c.Registration.Image.MaxDim)

	assert.EqualValues(t, 100000, c.Plans.Tiers.VIP.Min)
	assert.EqualValues(t, 199999, c.Plans.Tiers.VIP.Max)
	assert.EqualValues(t, 100000, c.Plans.Tiers.Luxury.Min)
	assert.Equal(t, []domain.PlanPrice{{Plan: domain.PlanVIP, DurationDays: 30, Price: 49990}}, c.Plans.PlanPrices)
	assert.Equal(t, 20, c.Plans.DiscountCodes[0].Percent)
	assert.Equal(t, domain.InterviewSlot{Date: "2026-11-02", Time: "10:00"}, c.Plans.InterviewSlots[0])
	assert.InDelta(t, 950, c.Plans.USDRate, 0.001)
}
