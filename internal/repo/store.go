package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"vitrina/internal/domain"
)

// SchemaVersion 当前文档结构版本，读到其它版本直接报错
const SchemaVersion = 1

// 集合名
const (
	CollRegistros = "registros"
	CollUsers     = "users"
	CollProfiles  = "profiles"
	CollThreads   = "threads"
	CollSettings  = "settings"
	CollMessages  = "messages"
)

// Record 存储层看到的文档：按 (collection, id) 寻址，body 为 JSON
type Record struct {
	Collection    string
	ID            string
	Status        string
	Lookup        string
	SchemaVersion int
	Body          []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter 列表过滤，空字段不参与过滤
type Filter struct {
	Status string
	Lookup string
	Offset int
	Limit  int
}

// Backend 文档存储适配器。Get/Delete 不存在时返回 domain.ErrNotFound。
type Backend interface {
	Get(ctx context.Context, collection, id string) (*Record, error)
	List(ctx context.Context, collection string, f Filter) ([]Record, error)
	Put(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, collection, id string) error
	// Tx 在一个事务内执行 fn，fn 返回错误则全部回滚
	Tx(ctx context.Context, fn func(tx Backend) error) error
}

// Keys 文档的索引列
type Keys struct {
	ID     string
	Status string
	Lookup string
}

// Collection 带类型的集合视图
type Collection[T any] struct {
	b       Backend
	name    string
	keys    func(*T) Keys
	timeout time.Duration
}

func NewCollection[T any](b Backend, name string, keys func(*T) Keys, timeout time.Duration) *Collection[T] {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Collection[T]{b: b, name: name, keys: keys, timeout: timeout}
}

// With 绑定到另一个 Backend（通常是事务）
func (c *Collection[T]) With(b Backend) *Collection[T] {
	cp := *c
	cp.b = b
	return &cp
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	rec, err := c.b.Get(ctx, c.name, id)
	if err != nil {
		return nil, mapErr(ctx, c.name, err)
	}
	return c.decode(rec)
}

func (c *Collection[T]) List(ctx context.Context, f Filter) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	recs, err := c.b.List(ctx, c.name, f)
	if err != nil {
		return nil, mapErr(ctx, c.name, err)
	}
	out := make([]T, 0, len(recs))
	for i := range recs {
		v, err := c.decode(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (c *Collection[T]) Put(ctx context.Context, v *T) error {
	k := c.keys(v)
	if k.ID == "" {
		return domain.Internal(c.name+": empty id", nil)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return domain.Internal(c.name+": encode", err)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err = c.b.Put(ctx, &Record{
		Collection:    c.name,
		ID:            k.ID,
		Status:        k.Status,
		Lookup:        k.Lookup,
		SchemaVersion: SchemaVersion,
		Body:          body,
	})
	return mapErr(ctx, c.name, err)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return mapErr(ctx, c.name, c.b.Delete(ctx, c.name, id))
}

func (c *Collection[T]) decode(rec *Record) (*T, error) {
	if rec.SchemaVersion != SchemaVersion {
		return nil, domain.Internal(c.name+"/"+rec.ID+": unsupported schema version", nil)
	}
	var v T
	if err := json.Unmarshal(rec.Body, &v); err != nil {
		return nil, domain.Internal(c.name+"/"+rec.ID+": decode", err)
	}
	return &v, nil
}

// mapErr 超时视为可重试的 unavailable，领域错误原样返回
func mapErr(ctx context.Context, coll string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.Unavailable(coll+": storage timeout", err)
	}
	return domain.Internal(coll+": storage error", err)
}

// Batch 逐条执行 fn，互不影响；失败的 id 汇总到 *domain.BatchError
func Batch(ctx context.Context, ids []string, fn func(ctx context.Context, id string) error) error {
	failed := map[string]error{}
	for _, id := range ids {
		if err := fn(ctx, id); err != nil {
			failed[id] = err
		}
	}
	if len(failed) > 0 {
		return &domain.BatchError{Failed: failed}
	}
	return nil
}
