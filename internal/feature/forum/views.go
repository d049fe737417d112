package forum

import (
	"slices"
	"strings"

	"vitrina/internal/domain"
)

type View string

const (
	ViewRecent     View = "recientes"
	ViewPopular    View = "populares"
	ViewUnanswered View = "sin-responder"
)

func (v View) Valid() bool {
	switch v {
	case ViewRecent, ViewPopular, ViewUnanswered:
		return true
	}
	return false
}

// Apply 纯函数：按分类/标签过滤后按视图排序，不修改入参
func Apply(threads []domain.Thread, v View, category domain.Category, tag string) []domain.Thread {
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := make([]domain.Thread, 0, len(threads))
	for _, t := range threads {
		if category != "" && t.Category != category {
			continue
		}
		if tag != "" && !slices.ContainsFunc(t.Tags, func(s string) bool { return strings.ToLower(s) == tag }) {
			continue
		}
		if v == ViewUnanswered && len(t.Replies) > 0 {
			continue
		}
		out = append(out, t)
	}

	byRecent := func(a, b domain.Thread) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}
	if v == ViewPopular {
		slices.SortStableFunc(out, func(a, b domain.Thread) int {
			sa, sb := a.Likes+a.Views, b.Likes+b.Views
			if sa != sb {
				if sa > sb {
					return -1
				}
				return 1
			}
			return byRecent(a, b)
		})
		return out
	}
	slices.SortStableFunc(out, byRecent)
	return out
}
