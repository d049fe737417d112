package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitrina/internal/domain"
	"vitrina/internal/repo"
)

func seed(t *testing.T, st *repo.Stores, ps ...domain.Profile) {
	t.Helper()
	for i := range ps {
		require.NoError(t, st.Profiles.Put(context.Background(), &ps[i]))
	}
}

func fixture(t *testing.T) (*Service, *repo.Stores) {
	t.Helper()
	st := repo.NewStores(repo.NewMemoryBackend(), time.Second)
	seed(t, st,
		domain.Profile{ID: "p1", UserID: "ana", ProfileVisible: true, PriceCLP: 120000, PriceUSD: 126},
		domain.Profile{ID: "p2", UserID: "eva", ProfileVisible: true, PriceCLP: 250000, PriceUSD: 263},
		domain.Profile{ID: "p3", UserID: "luz", ProfileVisible: false},
		domain.Profile{ID: "p4", UserID: "sol", ProfileVisible: true, Deleted: true},
	)
	return NewService(st, NewMemoryHidden(time.Hour), zap.NewNop()), st
}

func ids(es []Entry) []string {
	out := []string{}
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

func TestList_OnlyListedProfiles(t *testing.T) {
	s, _ := fixture(t)
	got, err := s.List(context.Background(), "", CLP)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids(got))
}

func TestList_Currency(t *testing.T) {
	s, _ := fixture(t)
	e, err := s.Get(context.Background(), "p1", USD)
	require.NoError(t, err)
	assert.Equal(t, int64(126), e.Price)
	assert.Equal(t, "US$126", e.PriceLabel)

	e, err = s.Get(context.Background(), "p1", CLP)
	require.NoError(t, err)
	assert.Equal(t, int64(120000), e.Price)
	assert.Contains(t, e.PriceLabel, "$")
}

func TestGet_UnlistedIsNotFound(t *testing.T) {
	s, _ := fixture(t)
	for _, id := range []string{"p3", "p4", "missing"} {
		_, err := s.Get(context.Background(), id, CLP)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
}

func TestHideAndRestore_PerSession(t *testing.T) {
	s, st := fixture(t)
	ctx := context.Background()

	require.NoError(t, s.Hide(ctx, "s1", "p1"))
	got, err := s.List(ctx, "s1", CLP)
	require.NoError(t, err)
	assert.Equal(t, []string{"p2"}, ids(got))

	// 其它会话不受影响
	got, err = s.List(ctx, "s2", CLP)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	require.NoError(t, s.HideAll(ctx, "s1", []string{"p1", "p2"}))
	got, err = s.List(ctx, "s1", CLP)
	require.NoError(t, err)
	assert.Empty(t, got)

	// 存储中的记录不变
	p, err := st.Profiles.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Listed())

	require.NoError(t, s.Restore(ctx, "s1"))
	got, err = s.List(ctx, "s1", CLP)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.ErrorIs(t, s.Hide(ctx, "", "p1"), domain.ErrValidation)
}

func TestMemoryHidden_Expires(t *testing.T) {
	h := NewMemoryHidden(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, h.Add(ctx, "s", "a"))
	m, _ := h.Members(ctx, "s")
	assert.True(t, m["a"])

	now = now.Add(2 * time.Minute)
	m, _ = h.Members(ctx, "s")
	assert.Empty(t, m)
}

func TestList_HiddenStoreDownStillServes(t *testing.T) {
	st := repo.NewStores(repo.NewMemoryBackend(), time.Second)
	seed(t, st, domain.Profile{ID: "p1", UserID: "ana", ProfileVisible: true})
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()
	s := NewService(st, NewRedisHidden(rdb, 0), zap.NewNop())

	got, err := s.List(context.Background(), "s1", CLP)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.ErrorIs(t, s.Hide(context.Background(), "s1", "p1"), domain.ErrUnavailable)
}

func TestOwnerVisibility(t *testing.T) {
	s, _ := fixture(t)
	ctx := context.Background()

	p, err := s.SetOwnerVisibility(ctx, "luz", true)
	require.NoError(t, err)
	assert.True(t, p.ProfileVisible)
	_, err = s.Get(ctx, "p3", CLP)
	require.NoError(t, err)

	_, err = s.SetOwnerVisibility(ctx, "sol", true)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = s.SetOwnerVisibility(ctx, "nadie", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminSoftDelete(t *testing.T) {
	s, st := fixture(t)
	ctx := context.Background()

	_, err := s.SoftDelete(ctx, "p1")
	require.NoError(t, err)
	_, err = s.Get(ctx, "p1", CLP)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := st.Profiles.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Deleted)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = s.SetVisibility(ctx, "p2", false)
	require.NoError(t, err)
	got, err := s.List(ctx, "", CLP)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("")
	require.NoError(t, err)
	assert.Equal(t, CLP, c)
	c, err = ParseCurrency(" USD ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)
	_, err = ParseCurrency("eur")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
