package repo

import (
	"context"
	"strings"
	"time"

	"vitrina/internal/domain"
)

// Profile 的 status 索引：是否出现在公开目录
const (
	ProfileListed   = "listed"
	ProfileUnlisted = "unlisted"
)

// Stores 平台用到的全部集合
type Stores struct {
	Backend   Backend
	Registros *Collection[domain.Registro]
	Users     *Collection[domain.User]
	Profiles  *Collection[domain.Profile]
	Threads   *Collection[domain.Thread]
	Settings  *Collection[domain.Settings]
	Messages  *Collection[domain.ContactMessage]
}

func NewStores(b Backend, timeout time.Duration) *Stores {
	return &Stores{
		Backend: b,
		Registros: NewCollection(b, CollRegistros, func(r *domain.Registro) Keys {
			return Keys{ID: r.ID, Status: string(r.Status), Lookup: r.Username}
		}, timeout),
		Users: NewCollection(b, CollUsers, func(u *domain.User) Keys {
			return Keys{ID: u.ID, Status: u.Role, Lookup: strings.ToLower(u.Email)}
		}, timeout),
		Profiles: NewCollection(b, CollProfiles, func(p *domain.Profile) Keys {
			st := ProfileUnlisted
			if p.Listed() {
				st = ProfileListed
			}
			return Keys{ID: p.ID, Status: st, Lookup: p.UserID}
		}, timeout),
		Threads: NewCollection(b, CollThreads, func(t *domain.Thread) Keys {
			return Keys{ID: t.ID, Status: string(t.Status), Lookup: string(t.Category)}
		}, timeout),
		Settings: NewCollection(b, CollSettings, func(*domain.Settings) Keys {
			return Keys{ID: domain.SettingsID}
		}, timeout),
		Messages: NewCollection(b, CollMessages, func(m *domain.ContactMessage) Keys {
			st := "unread"
			if m.Read {
				st = "read"
			}
			return Keys{ID: m.ID, Status: st, Lookup: strings.ToLower(m.Email)}
		}, timeout),
	}
}

// With 所有集合绑定到 tx
func (s *Stores) With(tx Backend) *Stores {
	return &Stores{
		Backend:   tx,
		Registros: s.Registros.With(tx),
		Users:     s.Users.With(tx),
		Profiles:  s.Profiles.With(tx),
		Threads:   s.Threads.With(tx),
		Settings:  s.Settings.With(tx),
		Messages:  s.Messages.With(tx),
	}
}

// Tx 在一个事务里使用绑定后的集合
func (s *Stores) Tx(ctx context.Context, fn func(tx *Stores) error) error {
	err := s.Backend.Tx(ctx, func(b Backend) error { return fn(s.With(b)) })
	return mapErr(ctx, "tx", err)
}

// UserByEmail 按邮箱（不区分大小写）查用户
func (s *Stores) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	us, err := s.Users.List(ctx, Filter{Lookup: strings.ToLower(strings.TrimSpace(email)), Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(us) == 0 {
		return nil, domain.NotFound("user %s not found", email)
	}
	return &us[0], nil
}
