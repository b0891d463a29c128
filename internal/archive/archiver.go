package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/internal/clock"
	"github.com/BaSui01/dallevision/internal/retry"
)

var (
	// ErrNothingToArchive 暂存目录中没有文件
	ErrNothingToArchive = errors.New("nothing to archive")

	// ErrIncompleteStaging 暂存目录非空但缺少三元组中的文件
	ErrIncompleteStaging = errors.New("staging set is incomplete")

	// ErrRelocation 搬迁（rename）失败，本周期终止
	ErrRelocation = errors.New("relocation failed")

	// ErrNotVisible 搬迁后目标文件在重试窗口内不可见
	ErrNotVisible = errors.New("archived file not visible")
)

// =============================================================================
// 📦 归档器
// =============================================================================

// Config 归档器配置
type Config struct {
	// 暂存目录
	StagingDir string
	// 归档根目录
	RootDir string
	// 日期分区所用时区，nil 表示 time.Local
	Location *time.Location
	// 搬迁后存在性检查的重试策略
	Verify retry.Policy
	// 为 true 时存在性检查失败会返回 ErrNotVisible；否则只记录日志
	StrictVerify bool
}

// Result 一次归档的结果
type Result struct {
	Entry  Entry
	Prompt string
	Story  string
	// 三个目标文件均通过了存在性检查
	Verified bool
}

// Archiver 将暂存三元组搬入按日期分区的归档目录
type Archiver struct {
	cfg    Config
	clock  clock.Clock
	retry  *retry.Executor
	logger *zap.Logger
}

// NewArchiver 创建归档器
func NewArchiver(cfg Config, clk clock.Clock, exec *retry.Executor, logger *zap.Logger) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	if exec == nil {
		exec = retry.NewExecutor(logger)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Verify.MaxAttempts < 1 {
		cfg.Verify.MaxAttempts = 1
	}
	return &Archiver{
		cfg:    cfg,
		clock:  clk,
		retry:  exec,
		logger: logger.With(zap.String("component", "archiver")),
	}
}

// Archive 搬迁当前暂存三元组并回读文本内容。
// 暂存为空时返回 ErrNothingToArchive，调用方应视为无操作。
func (a *Archiver) Archive(ctx context.Context) (*Result, error) {
	count, err := countFiles(a.cfg.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect staging directory: %w", err)
	}
	if count == 0 {
		a.logger.Info("nothing to archive, staging directory empty",
			zap.String("staging_dir", a.cfg.StagingDir))
		return nil, ErrNothingToArchive
	}

	if missing := a.missingStaged(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteStaging, strings.Join(missing, ", "))
	}

	// 每次调用重新取时间，跨午夜的周期归入当前日期
	day := DayOf(a.clock.Now().In(a.cfg.Location))
	dayDir := day.Dir(a.cfg.RootDir)

	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create day directory %s: %w", dayDir, err)
	}

	seq, err := NextSequence(dayDir)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate sequence number: %w", err)
	}

	entry := NewEntry(a.cfg.RootDir, day, seq)
	logger := a.logger.With(zap.String("id", entry.ID()), zap.String("day_dir", dayDir))

	for i, name := range StagedNames() {
		src := filepath.Join(a.cfg.StagingDir, name)
		dst := entry.Paths()[i]
		if err := os.Rename(src, dst); err != nil {
			logger.Error("relocation failed",
				zap.String("src", src),
				zap.String("dst", dst),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %s -> %s: %w", ErrRelocation, src, dst, err)
		}
	}

	verified := true
	for _, path := range entry.Paths() {
		if err := a.verify(ctx, path); err != nil {
			verified = false
			if a.cfg.StrictVerify {
				logger.Error("archived file not visible", zap.String("path", path), zap.Error(err))
				return nil, fmt.Errorf("%w: %s: %w", ErrNotVisible, path, err)
			}
			logger.Warn("archived file not visible, continuing", zap.String("path", path), zap.Error(err))
		}
	}

	prompt, err := os.ReadFile(entry.PromptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read back prompt %s: %w", entry.PromptPath, err)
	}
	story, err := os.ReadFile(entry.StoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read back story %s: %w", entry.StoryPath, err)
	}

	logger.Info("triplet archived",
		zap.Int("sequence", seq),
		zap.Bool("verified", verified),
	)

	return &Result{
		Entry:    entry,
		Prompt:   string(prompt),
		Story:    string(story),
		Verified: verified,
	}, nil
}

// verify 以固定间隔轮询 path，直到可见或次数耗尽
func (a *Archiver) verify(ctx context.Context, path string) error {
	return a.retry.RunPolicy(ctx, func(ctx context.Context) error {
		_, err := os.Stat(path)
		return err
	}, a.cfg.Verify)
}

// missingStaged 返回暂存目录中缺失的三元组文件名
func (a *Archiver) missingStaged() []string {
	var missing []string
	for _, name := range StagedNames() {
		info, err := os.Stat(filepath.Join(a.cfg.StagingDir, name))
		if err != nil || !info.Mode().IsRegular() {
			missing = append(missing, name)
		}
	}
	return missing
}

// countFiles 统计目录中的普通文件数，目录不存在时返回 0
func countFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.Type().IsRegular() {
			n++
		}
	}
	return n, nil
}
