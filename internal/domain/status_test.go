package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transition(t *testing.T) {
	changed, err := StatusPendiente.Transition(StatusAprobado)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = StatusPendiente.Transition(StatusRechazado)
	require.NoError(t, err)
	assert.True(t, changed)

	// 幂等
	changed, err = StatusAprobado.Transition(StatusAprobado)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = StatusAprobado.Transition(StatusRechazado)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = StatusRechazado.Transition(StatusAprobado)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = StatusAprobado.Transition(StatusPendiente)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("registro %s", "x")))
	assert.Equal(t, KindValidation, KindOf(Invalid("password", "too short")))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindUnavailable, KindOf(Unavailable("store", errors.New("deadline"))))
	assert.Equal(t, Kind(""), KindOf(nil))

	wrapped := errors.Join(errors.New("ctx"), Conflict("dup"))
	assert.True(t, errors.Is(wrapped, ErrConflict))
}

func TestBatchError_IDsSorted(t *testing.T) {
	be := &BatchError{Failed: map[string]error{"b": errors.New("x"), "a": errors.New("y")}}
	assert.Equal(t, []string{"a", "b"}, be.IDs())
	assert.Contains(t, be.Error(), "2 item(s) failed")
}

func TestSettings_Lookups(t *testing.T) {
	s := &Settings{
		Tiers:          Tiers{VIP: PriceRange{Min: 100000, Max: 199999}, Premium: PriceRange{Min: 200000}},
		PlanPrices:     []PlanPrice{{Plan: PlanVIP, DurationDays: 30, Price: 49990}},
		DiscountCodes:  []DiscountCode{{Code: "BIENVENIDA", Percent: 20}},
		InterviewSlots: []InterviewSlot{{Date: "2026-11-02", Time: "10:00"}},
	}
	p, ok := s.Price(PlanVIP, 30)
	assert.True(t, ok)
	assert.EqualValues(t, 49990, p)
	_, ok = s.Price(PlanVIP, 7)
	assert.False(t, ok)

	pct, ok := s.Discount("BIENVENIDA")
	assert.True(t, ok)
	assert.Equal(t, 20, pct)

	assert.True(t, s.HasSlot(InterviewSlot{Date: "2026-11-02", Time: "10:00"}))
	assert.False(t, s.HasSlot(InterviewSlot{Date: "2026-11-02", Time: "11:00"}))

	assert.True(t, s.Tiers.Premium.Contains(10_000_000))
	assert.False(t, s.Tiers.VIP.Contains(200000))
}
