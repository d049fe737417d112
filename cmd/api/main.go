package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vitrina/internal/app"
	"vitrina/internal/core/config"
	"vitrina/internal/core/logger"
	"vitrina/internal/core/server"
	"vitrina/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("init failed", zap.Error(err))
	}
	defer c.Close()

	// 管理员账号在用户端登录，所以在这里保证存在
	if err := c.Account.EnsureAdmin(ctx, cfg.Admin); err != nil {
		log.Fatal("ensure admin", zap.Error(err))
	}

	r := router.NewAPIEngine(log, cfg.App.Env, c.JWT, router.DefaultLimits(), c.Registry())

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.String("db", cfg.DB.Driver),
	)
	if err := server.Run(ctx, server.FromConfig(addr, r, cfg.App.HTTP), log, "user api"); err != nil {
		log.Fatal("user api start FAILED", zap.Error(err))
	}
}
