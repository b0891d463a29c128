package archive

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// =============================================================================
// 🧹 暂存目录校验
// =============================================================================

// StagingState 周期开始时暂存目录的状态
type StagingState int

const (
	// StagingEmpty 暂存目录为空
	StagingEmpty StagingState = iota
	// StagingComplete 暂存目录恰好有一个完整三元组，等待归档
	StagingComplete
	// StagingDiscarded 发现不完整三元组并已清理
	StagingDiscarded
	// StagingOverfull 条目数超过三元组大小，未做处理
	StagingOverfull
	// StagingUnreadable 无法读取暂存目录
	StagingUnreadable
)

func (s StagingState) String() string {
	switch s {
	case StagingEmpty:
		return "empty"
	case StagingComplete:
		return "complete"
	case StagingDiscarded:
		return "discarded"
	case StagingOverfull:
		return "overfull"
	case StagingUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// StagingReport 校验结果
type StagingReport struct {
	State   StagingState
	Found   int // 校验时的条目数
	Removed int // 实际删除的条目数
}

// StagingValidator 保证周期开始时暂存目录要么为空，要么是完整三元组
type StagingValidator struct {
	dir    string
	logger *zap.Logger
}

// NewStagingValidator 创建暂存目录校验器
func NewStagingValidator(dir string, logger *zap.Logger) *StagingValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StagingValidator{
		dir:    dir,
		logger: logger.With(zap.String("component", "staging_validator")),
	}
}

// Dir 返回暂存目录
func (v *StagingValidator) Dir() string {
	return v.dir
}

// Validate 检查暂存目录。条目数在 (0, 3) 之间时删除全部条目：
// 这是上一周期在生成途中崩溃留下的残缺状态。
// 删除失败只记录日志，不中断调用方的周期。
func (v *StagingValidator) Validate(ctx context.Context) StagingReport {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(v.dir, 0o755); mkErr != nil {
				v.logger.Error("failed to create staging directory",
					zap.String("dir", v.dir), zap.Error(mkErr))
				return StagingReport{State: StagingUnreadable}
			}
			v.logger.Info("staging directory created", zap.String("dir", v.dir))
			return StagingReport{State: StagingEmpty}
		}
		v.logger.Error("failed to read staging directory",
			zap.String("dir", v.dir), zap.Error(err))
		return StagingReport{State: StagingUnreadable}
	}

	report := StagingReport{Found: len(entries)}

	switch {
	case len(entries) == 0:
		report.State = StagingEmpty
		return report
	case len(entries) == TripletSize:
		report.State = StagingComplete
		v.logger.Debug("complete triplet pending archival", zap.String("dir", v.dir))
		return report
	case len(entries) > TripletSize:
		report.State = StagingOverfull
		v.logger.Warn("staging directory holds more entries than a triplet, leaving untouched",
			zap.String("dir", v.dir),
			zap.Int("entries", len(entries)),
		)
		return report
	}

	v.logger.Warn("discarding incomplete staging set",
		zap.String("dir", v.dir),
		zap.Int("entries", len(entries)),
	)

	for _, e := range entries {
		if ctx.Err() != nil {
			v.logger.Warn("staging cleanup interrupted", zap.Error(ctx.Err()))
			break
		}
		path := filepath.Join(v.dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			v.logger.Error("failed to remove staged entry",
				zap.String("path", path), zap.Error(err))
			continue
		}
		report.Removed++
	}

	report.State = StagingDiscarded
	return report
}
