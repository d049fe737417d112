package forum

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"vitrina/internal/core/events"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
	"vitrina/pkg/utils"
)

const (
	MaxTitleLen   = 120
	MaxContentLen = 5000
	MaxReplyLen   = 2000
)

type Service struct {
	col *repo.Collection[domain.Thread]
	pub events.Publisher
	l   *zap.Logger
	now func() time.Time
}

func NewService(st *repo.Stores, pub events.Publisher, l *zap.Logger) *Service {
	return &Service{col: st.Threads, pub: pub, l: l, now: time.Now}
}

type NewThread struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Category domain.Category `json:"category"`
	Tags     []string        `json:"tags"`
}

// CreateThread 新帖进入待审核队列
func (s *Service) CreateThread(ctx context.Context, author string, in *NewThread) (*domain.Thread, error) {
	if author == "" {
		return nil, domain.Unauthorized("login required")
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	switch {
	case title == "":
		return nil, domain.Invalid("title", "el título es obligatorio")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		return nil, domain.Invalid("title", "título demasiado largo")
	case content == "":
		return nil, domain.Invalid("content", "el contenido es obligatorio")
	case utf8.RuneCountInString(content) > MaxContentLen:
		return nil, domain.Invalid("content", "contenido demasiado largo")
	case !in.Category.Valid():
		return nil, domain.Invalid("category", "categoría desconocida")
	}
	tags, err := cleanTags(in.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	t := &domain.Thread{
		ID:        utils.NewID(),
		Author:    author,
		Title:     title,
		Content:   content,
		Category:  in.Category,
		Tags:      tags,
		Status:    domain.StatusPendiente,
		Replies:   []domain.Reply{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.col.Put(ctx, t); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.l, s.pub, events.ThreadCreated, t.ID, map[string]any{"author": author, "category": t.Category})
	return t, nil
}

func cleanTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	if len(out) > domain.MaxThreadTags {
		return nil, domain.Invalid("tags", "máximo 5 etiquetas")
	}
	return out, nil
}

// approved 公开接口只能看到已审核的帖子
func (s *Service) approved(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := s.col.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.StatusAprobado {
		return nil, domain.NotFound("thread %s not found", id)
	}
	return t, nil
}

// Open 打开帖子，每次都计一次浏览（不去重）
func (s *Service) Open(ctx context.Context, id string) (*domain.Thread, error) {
	t, err := s.approved(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Views++
	if err := s.col.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddReply parentID 为空时回复主帖；父回复不存在时不修改任何数据
func (s *Service) AddReply(ctx context.Context, threadID, parentID, author, content string) (*domain.Reply, error) {
	if author == "" {
		return nil, domain.Unauthorized("login required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Invalid("content", "la respuesta está vacía")
	}
	if utf8.RuneCountInString(content) > MaxReplyLen {
		return nil, domain.Invalid("content", "respuesta demasiado larga")
	}
	t, err := s.approved(ctx, threadID)
	if err != nil {
		return nil, err
	}

	r := domain.Reply{
		ID:        utils.NewID(),
		Author:    author,
		Content:   content,
		Replies:   []domain.Reply{},
		CreatedAt: s.now().UTC(),
	}
	if parentID == "" {
		t.Replies = append(t.Replies, r)
	} else {
		parent := FindReply(t.Replies, parentID)
		if parent == nil {
			return nil, domain.NotFound("reply %s not found in thread %s", parentID, threadID)
		}
		parent.Replies = append(parent.Replies, r)
	}
	t.UpdatedAt = r.CreatedAt
	if err := s.col.Put(ctx, t); err != nil {
		return nil, err
	}
	return &r, nil
}

// Like entityID 可以是帖子本身或树中任意回复
func (s *Service) Like(ctx context.Context, threadID, entityID string) (int64, error) {
	t, err := s.approved(ctx, threadID)
	if err != nil {
		return 0, err
	}
	var likes int64
	if entityID == "" || entityID == t.ID {
		t.Likes++
		likes = t.Likes
	} else {
		r := FindReply(t.Replies, entityID)
		if r == nil {
			return 0, domain.NotFound("reply %s not found in thread %s", entityID, threadID)
		}
		r.Likes++
		likes = r.Likes
	}
	if err := s.col.Put(ctx, t); err != nil {
		return 0, err
	}
	return likes, nil
}

// List 已审核帖子的视图
func (s *Service) List(ctx context.Context, v View, category domain.Category, tag string) ([]domain.Thread, error) {
	if v == "" {
		v = ViewRecent
	}
	if !v.Valid() {
		return nil, domain.Invalid("view", "vista desconocida")
	}
	if category != "" && !category.Valid() {
		return nil, domain.Invalid("category", "categoría desconocida")
	}
	threads, err := s.col.List(ctx, repo.Filter{Status: string(domain.StatusAprobado)})
	if err != nil {
		return nil, err
	}
	return Apply(threads, v, category, tag), nil
}
