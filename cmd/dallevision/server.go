package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/api/handlers"
	"github.com/BaSui01/dallevision/config"
	"github.com/BaSui01/dallevision/internal/cycle"
	"github.com/BaSui01/dallevision/internal/server"
	"github.com/BaSui01/dallevision/internal/telemetry"
)

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 组合周期调度器、运维 HTTP 服务与指标服务
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	app    *App

	httpManager    *server.Manager
	metricsManager *server.Manager
	healthHandler  *handlers.HealthHandler
	scheduler      *cycle.Scheduler
	gatherer       prometheus.Gatherer

	schedulerDone chan error
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config, app *App, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		app:      app,
		gatherer: gatherer,
	}
}

// =============================================================================
// 🚀 启动流程
// =============================================================================

// Start 启动 HTTP、Metrics 服务与周期调度。调度器在 ctx 取消后排空退出。
func (s *Server) Start(ctx context.Context) error {
	s.initHealthHandler()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	scheduler, err := cycle.NewScheduler(s.app.engine, s.cfg.Archive.CycleInterval, s.logger,
		cycle.WithDrainTimeout(s.cfg.Server.ShutdownTimeout))
	if err != nil {
		return err
	}
	s.scheduler = scheduler
	s.schedulerDone = make(chan error, 1)
	go func() {
		s.schedulerDone <- scheduler.Run(ctx)
	}()

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Duration("cycle_interval", s.cfg.Archive.CycleInterval),
		zap.Bool("generator_enabled", s.cfg.Generator.Enabled),
		zap.Bool("lease_enabled", s.app.lease != nil),
	)
	return nil
}

// initHealthHandler 注册数据库、Redis 与周期新鲜度检查
func (s *Server) initHealthHandler() {
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	s.healthHandler.RegisterCheck(handlers.NewPingCheck("database", s.app.pool.Ping))
	if s.app.lease != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.app.lease.Ping))
	}
	// 连续错过约三个周期才判定为不就绪
	s.healthHandler.RegisterCheck(handlers.NewFreshnessCheck("cycle",
		s.app.engine.LastSuccess, 3*s.cfg.Archive.CycleInterval, time.Now))
}

// =============================================================================
// 🌐 HTTP 服务器
// =============================================================================

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()
	s.healthHandler.Register(mux, Version, BuildTime, GitCommit)

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		OTelTracing(),
		MetricsMiddleware(s.app.metrics),
		RequestLogger(s.logger),
	)

	s.httpManager = server.NewManager(handler, server.ConfigFor(s.cfg.Server, s.cfg.Server.HTTPPort), s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// =============================================================================
// 📊 Metrics 服务器
// =============================================================================

func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.metricsManager = server.NewManager(mux, server.ConfigFor(s.cfg.Server, s.cfg.Server.MetricsPort), s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// =============================================================================
// 🛑 关闭流程
// =============================================================================

// Wait 阻塞到 ctx 取消或任一 HTTP 服务异常退出
func (s *Server) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case err := <-s.httpManager.Errors():
		return fmt.Errorf("http server: %w", err)
	case err := <-s.metricsManager.Errors():
		return fmt.Errorf("metrics server: %w", err)
	case err := <-s.schedulerDone:
		s.schedulerDone <- err
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		return nil
	}
}

// Shutdown 先等待调度器排空进行中的周期，再关闭 HTTP 服务
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	if s.schedulerDone != nil {
		if err := <-s.schedulerDone; err != nil {
			s.logger.Error("Scheduler exited with error", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	s.logger.Info("Graceful shutdown completed")
}

// =============================================================================
// ▶️ serve 命令
// =============================================================================

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting Dallevision",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown error", zap.Error(err))
		}
	}()

	app, err := newApp(cfg, logger, prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Close error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := NewServer(cfg, app, prometheus.DefaultGatherer, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		stop()
		srv.Shutdown()
		return
	}

	if err := srv.Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server stopped unexpectedly", zap.Error(err))
	}
	stop()
	srv.Shutdown()
}
