package forum

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vitrina/internal/core/events"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
)

var base = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *repo.Stores) {
	t.Helper()
	st := repo.NewStores(repo.NewMemoryBackend(), time.Second)
	s := NewService(st, events.Nop{}, zap.NewNop())
	s.now = func() time.Time { return base }
	return s, st
}

// approvedThread 建帖并直接置为已审核
func approvedThread(t *testing.T, s *Service, st *repo.Stores) *domain.Thread {
	t.Helper()
	th, err := s.CreateThread(context.Background(), "ana", &NewThread{
		Title: "Hola", Content: "primer post", Category: domain.CategoryOpinion, Tags: []string{"intro"},
	})
	require.NoError(t, err)
	th.Status = domain.StatusAprobado
	require.NoError(t, st.Threads.Put(context.Background(), th))
	return th
}

func tree() []domain.Reply {
	return []domain.Reply{
		{ID: "a", Replies: []domain.Reply{
			{ID: "a1"},
			{ID: "a2", Replies: []domain.Reply{{ID: "a2x"}}},
		}},
		{ID: "b"},
	}
}

func TestFindReply(t *testing.T) {
	rs := tree()
	got := FindReply(rs, "a2x")
	require.NotNil(t, got)
	got.Likes = 7
	assert.Equal(t, int64(7), rs[0].Replies[1].Replies[0].Likes, "returns pointer into tree")

	assert.NotNil(t, FindReply(rs, "b"))
	assert.Nil(t, FindReply(rs, "zzz"))
	assert.Nil(t, FindReply(nil, "a"))
	assert.Equal(t, 5, CountReplies(rs))
}

func TestCreateThread_Validation(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	th, err := s.CreateThread(ctx, "ana", &NewThread{
		Title: " Consulta ", Content: "texto", Category: domain.CategoryPregunta,
		Tags: []string{" a ", "", "A", "b", "c", "d", "e"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendiente, th.Status)
	assert.Equal(t, "Consulta", th.Title)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, th.Tags)

	_, err = s.CreateThread(ctx, "ana", &NewThread{
		Title: "x", Content: "y", Category: domain.CategoryPregunta, Tags: []string{"1", "2", "3", "4", "5", "6"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.CreateThread(ctx, "ana", &NewThread{Title: "x", Content: "y", Category: "chisme"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.CreateThread(ctx, "", &NewThread{Title: "x", Content: "y", Category: domain.CategoryOpinion})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPendingThreadHidden(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	th, err := s.CreateThread(ctx, "ana", &NewThread{Title: "x", Content: "y", Category: domain.CategoryOpinion})
	require.NoError(t, err)

	_, err = s.Open(ctx, th.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.AddReply(ctx, th.ID, "", "luis", "hola")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.List(ctx, ViewRecent, "", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddReply_Nested(t *testing.T) {
	s, st := newService(t)
	ctx := context.Background()
	th := approvedThread(t, s, st)

	r1, err := s.AddReply(ctx, th.ID, "", "luis", "respuesta")
	require.NoError(t, err)
	r2, err := s.AddReply(ctx, th.ID, r1.ID, "eva", "sub respuesta")
	require.NoError(t, err)
	_, err = s.AddReply(ctx, th.ID, r2.ID, "ana", "más profundo")
	require.NoError(t, err)

	got, err := st.Threads.Get(ctx, th.ID)
	require.NoError(t, err)
	require.Len(t, got.Replies, 1)
	require.Len(t, got.Replies[0].Replies, 1)
	require.Len(t, got.Replies[0].Replies[0].Replies, 1)
	assert.Equal(t, "más profundo", got.Replies[0].Replies[0].Replies[0].Content)
}

func TestAddReply_MissingParentLeavesTreeUntouched(t *testing.T) {
	s, st := newService(t)
	ctx := context.Background()
	th := approvedThread(t, s, st)
	_, err := s.AddReply(ctx, th.ID, "", "luis", "respuesta")
	require.NoError(t, err)
	before, err := st.Threads.Get(ctx, th.ID)
	require.NoError(t, err)

	_, err = s.AddReply(ctx, th.ID, "no-existe", "eva", "perdida")
	require.ErrorIs(t, err, domain.ErrNotFound)

	after, err := st.Threads.Get(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = s.AddReply(ctx, th.ID, "", "eva", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOpenCountsEveryView(t *testing.T) {
	s, st := newService(t)
	ctx := context.Background()
	th := approvedThread(t, s, st)

	for i := 0; i < 3; i++ {
		_, err := s.Open(ctx, th.ID)
		require.NoError(t, err)
	}
	got, err := st.Threads.Get(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Views)
}

func TestLike(t *testing.T) {
	s, st := newService(t)
	ctx := context.Background()
	th := approvedThread(t, s, st)
	r1, err := s.AddReply(ctx, th.ID, "", "luis", "uno")
	require.NoError(t, err)
	r2, err := s.AddReply(ctx, th.ID, r1.ID, "eva", "dos")
	require.NoError(t, err)

	n, err := s.Like(ctx, th.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = s.Like(ctx, th.ID, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	n, err = s.Like(ctx, th.ID, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Like(ctx, th.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := st.Threads.Get(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Likes)
	assert.Equal(t, int64(1), got.Replies[0].Replies[0].Likes)
}

func TestApplyViews(t *testing.T) {
	threads := []domain.Thread{
		{ID: "old", CreatedAt: base, Likes: 10, Views: 10, Category: domain.CategoryOpinion, Tags: []string{"Santiago"}},
		{ID: "mid", CreatedAt: base.Add(time.Hour), Views: 1, Category: domain.CategoryPregunta, Replies: []domain.Reply{{ID: "r"}}},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour), Likes: 3, Category: domain.CategoryOpinion},
	}
	ids := func(ts []domain.Thread) []string {
		out := []string{}
		for _, t := range ts {
			out = append(out, t.ID)
		}
		return out
	}

	assert.Equal(t, []string{"new", "mid", "old"}, ids(Apply(threads, ViewRecent, "", "")))
	assert.Equal(t, []string{"old", "new", "mid"}, ids(Apply(threads, ViewPopular, "", "")))
	assert.Equal(t, []string{"new", "old"}, ids(Apply(threads, ViewUnanswered, "", "")))
	assert.Equal(t, []string{"new", "old"}, ids(Apply(threads, ViewRecent, domain.CategoryOpinion, "")))
	assert.Equal(t, []string{"old"}, ids(Apply(threads, ViewRecent, "", "santiago")))

	// 入参顺序不变
	assert.Equal(t, []string{"old", "mid", "new"}, ids(threads))
}

func TestList_RejectsUnknownView(t *testing.T) {
	s, _ := newService(t)
	_, err := s.List(context.Background(), "top", "", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.List(context.Background(), ViewRecent, "chisme", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
