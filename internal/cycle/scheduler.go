package cycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/internal/clock"
)

// Runner 执行一个周期
type Runner interface {
	RunOnce(ctx context.Context) (*Report, error)
}

// =============================================================================
// ⏱️ 调度器
// =============================================================================

// Scheduler 在单个 goroutine 中按固定间隔驱动周期，周期之间不会重叠
type Scheduler struct {
	runner   Runner
	interval time.Duration
	drain    time.Duration
	clock    clock.Clock
	logger   *zap.Logger
}

// SchedulerOption 调度器选项
type SchedulerOption func(*Scheduler)

// WithDrainTimeout 设置关闭时等待进行中周期的最长时间，超时后取消该周期
func WithDrainTimeout(d time.Duration) SchedulerOption {
	return func(s *Scheduler) { s.drain = d }
}

// WithClock 注入时钟
func WithClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// NewScheduler 创建调度器
func NewScheduler(runner Runner, interval time.Duration, logger *zap.Logger, opts ...SchedulerOption) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("cycle interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scheduler{
		runner:   runner,
		interval: interval,
		drain:    30 * time.Second,
		clock:    clock.Real(),
		logger:   logger.With(zap.String("component", "scheduler")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run 立即执行一次周期，此后每个间隔执行一次，直到 ctx 取消。
// ctx 取消时不会打断进行中的周期，而是等待其结束（至多 drain 超时）后返回。
// 上一周期超过间隔时，期间错过的触发被合并为一次。
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))

	s.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return nil
		case <-ticker.C():
			if ctx.Err() != nil {
				continue
			}
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		s.logger.Info("shutdown requested, waiting for in-flight cycle", zap.Duration("timeout", s.drain))
		timer := time.NewTimer(s.drain)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			s.logger.Warn("in-flight cycle exceeded drain timeout, cancelling")
			cancel()
		}
	}()

	// 失败已由 Runner 记录，调度继续
	_, _ = s.runner.RunOnce(cycleCtx)
}
