package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"vitrina/internal/domain"
)

// MemoryBackend 进程内实现，用于测试和 db.driver=memory 的本地开发
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]Record
	now  func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: map[string]map[string]Record{}, now: time.Now}
}

func (b *MemoryBackend) Get(ctx context.Context, collection, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.data[collection][id]
	if !ok {
		return nil, domain.NotFound("%s %s not found", collection, id)
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return &rec, nil
}

func (b *MemoryBackend) List(ctx context.Context, collection string, f Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	out := make([]Record, 0, len(b.data[collection]))
	for _, rec := range b.data[collection] {
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		if f.Lookup != "" && rec.Lookup != f.Lookup {
			continue
		}
		rec.Body = append([]byte(nil), rec.Body...)
		out = append(out, rec)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []Record{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (b *MemoryBackend) Put(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	coll, ok := b.data[rec.Collection]
	if !ok {
		coll = map[string]Record{}
		b.data[rec.Collection] = coll
	}
	now := b.now()
	cp := *rec
	cp.Body = append([]byte(nil), rec.Body...)
	cp.CreatedAt, cp.UpdatedAt = now, now
	if prev, ok := coll[rec.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	coll[rec.ID] = cp
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[collection][id]; !ok {
		return domain.NotFound("%s %s not found", collection, id)
	}
	delete(b.data[collection], id)
	return nil
}

// Tx 在快照上执行 fn，成功后整体替换；期间其它写入被阻塞
func (b *MemoryBackend) Tx(ctx context.Context, fn func(tx Backend) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := &MemoryBackend{data: make(map[string]map[string]Record, len(b.data)), now: b.now}
	for name, coll := range b.data {
		cp := make(map[string]Record, len(coll))
		for id, rec := range coll {
			cp[id] = rec
		}
		snap.data[name] = cp
	}
	if err := fn(snap); err != nil {
		return err
	}
	b.data = snap.data
	return nil
}
