package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/api"
	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/LJTian/NewsBrief/internal/scheduler"
	"github.com/LJTian/NewsBrief/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	db, err := storage.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}
	store, err := storage.NewStore(db, storage.NewRedis(cfg.RedisAddr, log), log)
	if err != nil {
		log.Fatal("init store failed", zap.Error(err))
	}

	// 配置了 CRON_SPEC 时由本进程定时采集，否则只提供读接口
	if cfg.CronSpec != "" {
		p, err := pipeline.NewFromConfig(context.Background(), cfg, store, log)
		if err != nil {
			log.Fatal("init pipeline failed", zap.Error(err))
		}
		defer p.Close()

		s, err := scheduler.New(cfg.CronSpec, p, log.With(zap.String("component", "scheduler")))
		if err != nil {
			log.Fatal("init scheduler failed", zap.Error(err))
		}
		s.Start()
		defer s.Stop()
		log.Info("scheduler started",
			zap.String("spec", cfg.CronSpec),
			zap.String("sources", strings.Join(cfg.Enabled(), ",")),
		)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log))

	apiServer := api.NewServer(store, log.With(zap.String("component", "api")))
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Info("starting api server", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("server exit", zap.Error(err))
	}
}
