package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/domain"
)

type note struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Owner  string   `json:"owner"`
	Tags   []string `json:"tags"`
}

func noteKeys(n *note) Keys { return Keys{ID: n.ID, Status: n.Status, Lookup: n.Owner} }

func newNotes(b Backend) *Collection[note] {
	return NewCollection(b, "notes", noteKeys, time.Second)
}

func TestCollection_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newNotes(NewMemoryBackend())

	in := note{ID: "n1", Status: "pendiente", Owner: "ana", Tags: []string{"a", "b"}}
	require.NoError(t, c.Put(ctx, &in))

	got, err := c.Get(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, in, *got)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_ListFilters(t *testing.T) {
	ctx := context.Background()
	c := newNotes(NewMemoryBackend())
	require.NoError(t, c.Put(ctx, &note{ID: "1", Status: "pendiente", Owner: "ana"}))
	require.NoError(t, c.Put(ctx, &note{ID: "2", Status: "aprobado", Owner: "ana"}))
	require.NoError(t, c.Put(ctx, &note{ID: "3", Status: "pendiente", Owner: "luis"}))

	pending, err := c.List(ctx, Filter{Status: "pendiente"})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	ana, err := c.List(ctx, Filter{Lookup: "ana"})
	require.NoError(t, err)
	assert.Len(t, ana, 2)

	page, err := c.List(ctx, Filter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	empty, err := c.List(ctx, Filter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCollection_PutRequiresID(t *testing.T) {
	c := newNotes(NewMemoryBackend())
	err := c.Put(context.Background(), &note{})
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}

func TestCollection_DeleteMissing(t *testing.T) {
	c := newNotes(NewMemoryBackend())
	assert.ErrorIs(t, c.Delete(context.Background(), "nope"), domain.ErrNotFound)
}

func TestCollection_RejectsOtherSchemaVersion(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Put(ctx, &Record{Collection: "notes", ID: "old", SchemaVersion: 0, Body: []byte(`{"id":"old"}`)}))

	_, err := newNotes(b).Get(ctx, "old")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version")
}

func TestMemoryBackend_TxRollback(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	c := newNotes(b)
	require.NoError(t, c.Put(ctx, &note{ID: "keep", Status: "pendiente"}))

	boom := errors.New("boom")
	err := b.Tx(ctx, func(tx Backend) error {
		tc := c.With(tx)
		require.NoError(t, tc.Put(ctx, &note{ID: "keep", Status: "aprobado"}))
		require.NoError(t, tc.Put(ctx, &note{ID: "new", Status: "aprobado"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := c.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "pendiente", got.Status)
	_, err = c.Get(ctx, "new")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryBackend_TxCommit(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	c := newNotes(b)
	require.NoError(t, b.Tx(ctx, func(tx Backend) error {
		return c.With(tx).Put(ctx, &note{ID: "a", Status: "aprobado"})
	}))
	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "aprobado", got.Status)
}

// slowBackend 一直阻塞到 ctx 过期
type slowBackend struct{ *MemoryBackend }

func (s slowBackend) Get(ctx context.Context, _, _ string) (*Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCollection_TimeoutIsUnavailable(t *testing.T) {
	c := NewCollection(slowBackend{NewMemoryBackend()}, "notes", noteKeys, 20*time.Millisecond)
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestBatch_ReportsFailedIDs(t *testing.T) {
	var done []string
	err := Batch(context.Background(), []string{"a", "b", "c"}, func(_ context.Context, id string) error {
		if id == "b" {
			return errors.New("write failed")
		}
		done = append(done, id)
		return nil
	})
	var be *domain.BatchError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, []string{"b"}, be.IDs())
	assert.Equal(t, []string{"a", "c"}, done)
}
