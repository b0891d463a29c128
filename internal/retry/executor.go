package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrExhausted 所有尝试均失败
	ErrExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidAttempts 最大尝试次数小于 1
	ErrInvalidAttempts = errors.New("max attempts must be at least 1")
)

// Operation 被重试的操作
type Operation func(ctx context.Context) error

// Policy 重试策略：固定延迟，无退避，无抖动
type Policy struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"` // 最大尝试次数（含首次）
	Delay       time.Duration `yaml:"delay" json:"delay"`               // 两次尝试之间的固定延迟
}

// DefaultPolicy 返回默认重试策略（3 次，间隔 3 秒）
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Delay:       3 * time.Second,
	}
}

// =============================================================================
// 🔁 执行器
// =============================================================================

// Executor 有界重试执行器
type Executor struct {
	logger  *zap.Logger
	onRetry func(attempt int, err error, delay time.Duration)
}

// Option 执行器选项
type Option func(*Executor)

// WithOnRetry 设置每次失败后、等待前的回调
func WithOnRetry(fn func(attempt int, err error, delay time.Duration)) Option {
	return func(e *Executor) {
		e.onRetry = fn
	}
}

// NewExecutor 创建重试执行器
func NewExecutor(logger *zap.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{logger: logger.With(zap.String("component", "retry"))}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunPolicy 按策略执行操作
func (e *Executor) RunPolicy(ctx context.Context, op Operation, p Policy) error {
	return e.Run(ctx, op, p.MaxAttempts, p.Delay)
}

// Run 执行 op，失败后等待 delay 再试，最多 maxAttempts 次。
// 任意一次成功立即返回 nil；最后一次失败后不再等待。
func (e *Executor) Run(ctx context.Context, op Operation, maxAttempts int, delay time.Duration) error {
	if maxAttempts < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidAttempts, maxAttempts)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				e.logger.Info("operation succeeded after retry", zap.Int("attempt", attempt))
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}

		e.logger.Warn("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry cancelled after %d attempts: %w", attempt, err)
		}
	}

	e.logger.Error("retry attempts exhausted",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, maxAttempts, lastErr)
}

// sleep 等待 d，同时监听 ctx 取消
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
