package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/LJTian/NewsBrief/internal/config"
	"github.com/LJTian/NewsBrief/internal/logger"
	"github.com/LJTian/NewsBrief/internal/pipeline"
	"github.com/LJTian/NewsBrief/internal/storage"
)

// 一个仅执行一次采集任务的命令行入口：适合手动触发或交给外部定时器
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

	ctx := context.Background()

	db, err := storage.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}
	store, err := storage.NewStore(db, storage.NewRedis(cfg.RedisAddr, log), log)
	if err != nil {
		log.Fatal("init store failed", zap.Error(err))
	}

	p, err := pipeline.NewFromConfig(ctx, cfg, store, log)
	if err != nil {
		log.Fatal("init pipeline failed", zap.Error(err))
	}
	defer p.Close()

	log.Info("sources enabled", zap.String("sources", strings.Join(cfg.Enabled(), ",")))

	saved, err := p.Run(ctx)
	if err != nil {
		log.Error("collect failed", zap.Error(err))
		p.Close()
		log.Sync() //nolint:errcheck
		os.Exit(1)
	}
	fmt.Printf("Saved %d news items.\n", saved)
}
