package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

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
	log = log.Named("admin")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("init failed", zap.Error(err))
	}
	defer c.Close()

	r := router.NewAdminEngine(log, cfg.App.Env, c.JWT, router.DefaultLimits(), c.Registry())

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)
	if err := server.Run(ctx, server.FromConfig(addr, r, cfg.App.HTTP), log, "admin api"); err != nil {
		log.Fatal("admin api start FAILED", zap.Error(err))
	}
}
