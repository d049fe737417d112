package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vitrina/internal/core/auth"
	"vitrina/internal/core/cache"
	"vitrina/internal/core/config"
	"vitrina/internal/core/database"
	"vitrina/internal/core/events"
	"vitrina/internal/core/imaging"
	"vitrina/internal/core/mailer"
	"vitrina/internal/core/media"
	"vitrina/internal/feature/account"
	"vitrina/internal/feature/catalog"
	"vitrina/internal/feature/contact"
	"vitrina/internal/feature/forum"
	"vitrina/internal/feature/moderation"
	"vitrina/internal/feature/registration"
	"vitrina/internal/feature/settings"
	"vitrina/internal/repo"
	"vitrina/internal/transport/http/handler"
	"vitrina/internal/transport/http/router"
)

// Container 两个进程共用的依赖
type Container struct {
	Cfg    *config.Config
	Log    *zap.Logger
	JWT    *auth.JWTer
	Stores *repo.Stores
	Cache  *cache.Cache // 未启用 redis 时为 nil
	Media  media.Store
	Mail   mailer.Sender
	Events events.Publisher

	Settings     *settings.Service
	Registration *registration.Service
	Moderation   *moderation.Service
	Catalog      *catalog.Service
	Forum        *forum.Service
	Account      *account.Service
	Contact      *contact.Service

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	c := &Container{Cfg: cfg, Log: l}

	backend, closeDB, err := database.Open(cfg.DB, l)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	c.closers = append(c.closers, closeDB)
	c.Stores = repo.NewStores(backend, time.Duration(cfg.Store.TimeoutSec)*time.Second)

	var hidden catalog.HiddenStore = catalog.NewMemoryHidden(catalog.DefaultHiddenTTL)
	if cfg.Redis.Enable {
		c.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := c.Cache.Ping(ctx); err != nil {
			// 启动时连不上就整体不用 redis，配置直接读存储
			l.Warn("redis unreachable, running without cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = c.Cache.Close()
			c.Cache = nil
		} else {
			hidden = catalog.NewRedisHidden(c.Cache.RDB, catalog.DefaultHiddenTTL)
			rc := c.Cache
			c.closers = append(c.closers, func() { _ = rc.Close() })
		}
	}

	if c.Media, err = media.New(ctx, cfg.Media, l); err != nil {
		c.Close()
		return nil, fmt.Errorf("media: %w", err)
	}
	c.Mail = mailer.New(cfg.Mail, l)
	c.Events = events.New(cfg.Events.RabbitURL, cfg.Events.Queue, l)
	c.closers = append(c.closers, func() { _ = c.Events.Close() })

	c.JWT = &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	c.Settings = settings.NewService(c.Stores, c.Cache, cfg.Plans, l)
	c.Registration = registration.NewService(c.Stores, c.Settings,
		imaging.New(cfg.Registration.Image.MaxDim, cfg.Registration.Image.MaxBytes),
		c.Mail, c.Events,
		registration.Options{MaxRecordBytes: cfg.Registration.MaxRecordBytes, AdminEmail: cfg.Registration.AdminEmail},
		l.Named("registration"))
	c.Moderation = moderation.NewService(c.Stores, c.Settings, c.Media, c.Mail, c.Events, l.Named("moderation"))
	c.Catalog = catalog.NewService(c.Stores, hidden, l.Named("catalog"))
	c.Forum = forum.NewService(c.Stores, c.Events, l.Named("forum"))
	c.Account = account.NewService(c.Stores, c.JWT, l.Named("account"))
	c.Contact = contact.NewService(c.Stores, c.Mail, c.Events, cfg.Registration.AdminEmail, l.Named("contact"))
	return c, nil
}

// Registry 所有 handler 模块；api / admin 各自挂载实现了对应接口的部分
func (c *Container) Registry() *router.Registry {
	return router.NewRegistry(
		handler.NewAccount(c.Account),
		handler.NewRegistration(c.Registration),
		handler.NewCatalog(c.Catalog),
		handler.NewForum(c.Forum),
		handler.NewContact(c.Contact),
		handler.NewMedia(c.Media),
		handler.NewModeration(c.Moderation),
		handler.NewSettings(c.Settings),
	)
}

// Close 逆序释放
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
