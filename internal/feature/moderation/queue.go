package moderation

import (
	"context"

	"vitrina/internal/domain"
	"vitrina/internal/repo"
)

// Queue 按状态审核的集合；注册申请和论坛帖子各用一个，互不影响
type Queue[T any] struct {
	col    *repo.Collection[T]
	status func(*T) *domain.Status
}

func NewQueue[T any](col *repo.Collection[T], status func(*T) *domain.Status) *Queue[T] {
	return &Queue[T]{col: col, status: status}
}

func (q *Queue[T]) Pending(ctx context.Context) ([]T, error) {
	return q.List(ctx, domain.StatusPendiente)
}

// List st 为空时返回全部
func (q *Queue[T]) List(ctx context.Context, st domain.Status) ([]T, error) {
	if st != "" && !st.Valid() {
		return nil, domain.Invalid("status", "estado desconocido")
	}
	return q.col.List(ctx, repo.Filter{Status: string(st)})
}

// Transition 读-改-写；重复迁移到同一状态返回 changed=false 且不写库
func (q *Queue[T]) Transition(ctx context.Context, id string, to domain.Status, mutate func(*T)) (*T, bool, error) {
	v, err := q.col.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	st := q.status(v)
	changed, err := st.Transition(to)
	if err != nil || !changed {
		return v, false, err
	}
	*st = to
	if mutate != nil {
		mutate(v)
	}
	if err := q.col.Put(ctx, v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}
