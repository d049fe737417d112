package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// HiddenStore 每个浏览会话隐藏的资料 id，只影响展示，不改存储
type HiddenStore interface {
	Add(ctx context.Context, session string, ids ...string) error
	Members(ctx context.Context, session string) (map[string]bool, error)
	Clear(ctx context.Context, session string) error
}

const DefaultHiddenTTL = 24 * time.Hour

// RedisHidden 每个会话一个 set，写入时刷新过期时间
type RedisHidden struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisHidden(rdb *redis.Client, ttl time.Duration) *RedisHidden {
	if ttl <= 0 {
		ttl = DefaultHiddenTTL
	}
	return &RedisHidden{rdb: rdb, ttl: ttl}
}

func hiddenKey(session string) string { return "catalog:hidden:" + session }

func (h *RedisHidden) Add(ctx context.Context, session string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	key := hiddenKey(session)
	pipe := h.rdb.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, h.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (h *RedisHidden) Members(ctx context.Context, session string) (map[string]bool, error) {
	ids, err := h.rdb.SMembers(ctx, hiddenKey(session)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (h *RedisHidden) Clear(ctx context.Context, session string) error {
	return h.rdb.Del(ctx, hiddenKey(session)).Err()
}

// MemoryHidden 没有 redis 时的进程内实现
type MemoryHidden struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	sets map[string]*hiddenSet
}

type hiddenSet struct {
	ids     map[string]bool
	expires time.Time
}

func NewMemoryHidden(ttl time.Duration) *MemoryHidden {
	if ttl <= 0 {
		ttl = DefaultHiddenTTL
	}
	return &MemoryHidden{ttl: ttl, now: time.Now, sets: map[string]*hiddenSet{}}
}

func (h *MemoryHidden) Add(_ context.Context, session string, ids ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.live(session)
	if s == nil {
		s = &hiddenSet{ids: map[string]bool{}}
		h.sets[session] = s
	}
	for _, id := range ids {
		s.ids[id] = true
	}
	s.expires = h.now().Add(h.ttl)
	return nil
}

func (h *MemoryHidden) Members(_ context.Context, session string) (map[string]bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]bool{}
	if s := h.live(session); s != nil {
		for id := range s.ids {
			out[id] = true
		}
	}
	return out, nil
}

func (h *MemoryHidden) Clear(_ context.Context, session string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sets, session)
	return nil
}

// live 调用方持锁；过期的顺手删掉
func (h *MemoryHidden) live(session string) *hiddenSet {
	s, ok := h.sets[session]
	if !ok {
		return nil
	}
	if h.now().After(s.expires) {
		delete(h.sets, session)
		return nil
	}
	return s
}
