package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/config"
	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/cache"
	"github.com/BaSui01/dallevision/internal/clock"
	"github.com/BaSui01/dallevision/internal/cycle"
	"github.com/BaSui01/dallevision/internal/database"
	"github.com/BaSui01/dallevision/internal/generator"
	"github.com/BaSui01/dallevision/internal/metrics"
	"github.com/BaSui01/dallevision/internal/ranking"
	"github.com/BaSui01/dallevision/internal/retry"
)

// =============================================================================
// 🧩 组件装配
// =============================================================================

// App 按配置装配好的运行时组件，serve、cycle、upvote 命令共用
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *metrics.Collector
	pool     *database.PoolManager
	store    *ranking.GormStore
	recorder *ranking.Recorder
	lease    *cache.Manager
	engine   *cycle.Engine
}

// newApp 打开数据库与可选的 Redis，并构造周期引擎。
// reg 为空时指标注册到独立的 Registry，不对外暴露。
func newApp(cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	collector := metrics.NewCollectorWith(reg, "dallevision", logger)

	loc, err := cfg.Archive.TimeLocation()
	if err != nil {
		return nil, err
	}

	pool, err := database.Open(cfg.Database, logger, database.WithStatsObserver(func(s database.PoolStats) {
		collector.RecordDBConnections(s.OpenConnections, s.InUse, s.Idle)
	}))
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		pool:    pool,
		store:   ranking.NewGormStore(pool.DB()),
	}

	commitRetry := retry.NewExecutor(logger, retry.WithOnRetry(func(int, error, time.Duration) {
		collector.RecordRetry("commit")
	}))
	app.recorder = ranking.NewRecorder(app.store, commitRetry, retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Delay:       cfg.Retry.Delay,
	}, logger)

	verifyRetry := retry.NewExecutor(logger, retry.WithOnRetry(func(int, error, time.Duration) {
		collector.RecordRetry("verify")
	}))
	archiver := archive.NewArchiver(archive.Config{
		StagingDir: cfg.Archive.StagingDir,
		RootDir:    cfg.Archive.RootDir,
		Location:   loc,
		Verify: retry.Policy{
			MaxAttempts: cfg.Archive.VerifyAttempts,
			Delay:       cfg.Archive.VerifyDelay,
		},
		StrictVerify: cfg.Archive.VerifyStrict,
	}, clock.Real(), verifyRetry, logger)

	deps := cycle.Deps{
		Validator: archive.NewStagingValidator(cfg.Archive.StagingDir, logger),
		Archiver:  archiver,
		Committer: app.recorder,
		Metrics:   collector,
		Logger:    logger,
	}

	if cfg.Generator.Enabled {
		client := generator.NewClient(generator.ClientConfig{
			APIKey:            cfg.Generator.APIKey,
			BaseURL:           cfg.Generator.BaseURL,
			Timeout:           cfg.Generator.Timeout,
			RequestsPerMinute: cfg.Generator.RequestsPerMinute,
		}, collector.RecordGeneratorRequest)
		deps.Generator = generator.New(client, cfg.Generator, cfg.Archive.StagingDir, logger)
	} else {
		logger.Info("generator disabled, cycles archive externally staged triplets only")
	}

	if cfg.Redis.Enabled {
		lease, err := cache.NewManager(cache.Config{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			LeaseKey:     cfg.Redis.LeaseKey,
			LeaseTTL:     cfg.Redis.LeaseTTL,
		}, logger)
		if err != nil {
			_ = pool.Close()
			return nil, fmt.Errorf("failed to init cycle lease: %w", err)
		}
		app.lease = lease
		deps.Lease = lease
	}

	app.engine = cycle.NewEngine(deps)
	return app, nil
}

// Close 释放 Redis 与数据库连接
func (a *App) Close() error {
	var errs []error
	if a.lease != nil {
		if err := a.lease.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close lease manager: %w", err))
		}
	}
	if a.pool != nil {
		if err := a.pool.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database pool: %w", err))
		}
	}
	return errors.Join(errs...)
}
