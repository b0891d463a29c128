package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/clock"
	"github.com/BaSui01/dallevision/internal/ctxkeys"
	"github.com/BaSui01/dallevision/internal/generator"
	"github.com/BaSui01/dallevision/internal/metrics"
	"github.com/BaSui01/dallevision/internal/telemetry"
)

// ErrStagingOverfull 暂存目录条目多于一个三元组，需要人工处理
var ErrStagingOverfull = errors.New("staging directory holds more than one triplet")

// 周期结果
const (
	OutcomeSuccess = "success"
	OutcomeIdle    = "idle"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// =============================================================================
// 🔌 协作者接口
// =============================================================================

// Validator 暂存目录校验
type Validator interface {
	Validate(ctx context.Context) archive.StagingReport
}

// Archiver 暂存三元组归档
type Archiver interface {
	Archive(ctx context.Context) (*archive.Result, error)
}

// Committer 元数据提交
type Committer interface {
	Commit(ctx context.Context, entry archive.Entry, prompt, story string) error
}

// Generator 向暂存目录写入新的三元组
type Generator interface {
	Generate(ctx context.Context) (*generator.Output, error)
}

// Lease 跨进程的周期互斥
type Lease interface {
	AcquireLease(ctx context.Context, holder string) (bool, error)
	ReleaseLease(ctx context.Context, holder string) (bool, error)
}

// =============================================================================
// ⚙️ 周期引擎
// =============================================================================

// Deps 引擎依赖。Generator、Lease、Metrics 可为空。
type Deps struct {
	Validator Validator
	Archiver  Archiver
	Committer Committer
	Generator Generator
	Lease     Lease
	Metrics   *metrics.Collector
	Clock     clock.Clock
	Logger    *zap.Logger
}

// Report 一次周期的经过
type Report struct {
	ID       string
	Started  time.Time
	Finished time.Time
	Outcome  string
	// 跳过原因，仅 OutcomeSkipped 时有值
	SkipReason string
	Staging    archive.StagingReport
	// 周期开始时暂存目录中已有的完整三元组
	Pending   *archive.Result
	Generated *generator.Output
	Archived  *archive.Result
	// 成功写入元数据的标识符
	Committed []string
}

// Engine 执行单个归档周期，由调度器持有
type Engine struct {
	deps        Deps
	logger      *zap.Logger
	lastSuccess atomic.Int64
}

// NewEngine 创建周期引擎
func NewEngine(deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	return &Engine{
		deps:   deps,
		logger: deps.Logger.With(zap.String("component", "cycle")),
	}
}

// LastSuccess 返回上一次成功或空闲周期的结束时间，尚无时为零值
func (e *Engine) LastSuccess() time.Time {
	n := e.lastSuccess.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// RunOnce 执行一个周期：校验暂存 → 归档遗留三元组 → 生成 → 归档 → 提交元数据。
// 返回的 Report 总是非空；error 表示周期失败。
func (e *Engine) RunOnce(ctx context.Context) (*Report, error) {
	report := &Report{
		ID:      uuid.NewString(),
		Started: e.deps.Clock.Now(),
	}
	log := e.logger.With(zap.String("cycle_id", report.ID))

	ctx = ctxkeys.WithCycleID(ctx, report.ID)
	ctx, span := telemetry.StartCycleSpan(ctx, report.ID)

	err := e.run(ctx, report, log)
	report.Finished = e.deps.Clock.Now()
	if err != nil {
		report.Outcome = OutcomeFailed
	}
	telemetry.EndSpan(span, err)

	e.finish(report, err, log)
	return report, err
}

func (e *Engine) run(ctx context.Context, report *Report, log *zap.Logger) error {
	if e.deps.Lease != nil {
		ok, err := e.deps.Lease.AcquireLease(ctx, report.ID)
		if err != nil {
			return fmt.Errorf("acquire cycle lease: %w", err)
		}
		if !ok {
			report.Outcome = OutcomeSkipped
			report.SkipReason = "lease_held"
			return nil
		}
		defer func() {
			// 周期上下文可能已取消，释放不应随之失败
			if _, err := e.deps.Lease.ReleaseLease(context.WithoutCancel(ctx), report.ID); err != nil {
				log.Warn("failed to release cycle lease", zap.Error(err))
			}
		}()
	}

	report.Staging = e.validate(ctx)
	switch report.Staging.State {
	case archive.StagingOverfull:
		return fmt.Errorf("%w: %d entries", ErrStagingOverfull, report.Staging.Found)
	case archive.StagingComplete:
		log.Info("archiving triplet left by previous cycle")
		res, err := e.archiveAndCommit(ctx, "archive_pending", report)
		if err != nil {
			return err
		}
		report.Pending = res
	}

	if e.deps.Generator == nil {
		if report.Pending == nil {
			report.Outcome = OutcomeIdle
		} else {
			report.Outcome = OutcomeSuccess
		}
		return nil
	}

	out, err := e.generate(ctx)
	if err != nil {
		return err
	}
	report.Generated = out

	res, err := e.archiveAndCommit(ctx, "archive", report)
	if err != nil {
		return err
	}
	report.Archived = res
	report.Outcome = OutcomeSuccess
	return nil
}

func (e *Engine) validate(ctx context.Context) archive.StagingReport {
	ctx, span := telemetry.StartPhaseSpan(ctx, "validate")
	rep := e.deps.Validator.Validate(ctx)
	telemetry.EndSpan(span, nil)

	if m := e.deps.Metrics; m != nil {
		m.RecordStagingValidation(rep.State.String())
	}
	return rep
}

func (e *Engine) generate(ctx context.Context) (*generator.Output, error) {
	ctx, span := telemetry.StartPhaseSpan(ctx, "generate")
	out, err := e.deps.Generator.Generate(ctx)
	telemetry.EndSpan(span, err)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	return out, nil
}

func (e *Engine) archiveAndCommit(ctx context.Context, phase string, report *Report) (*archive.Result, error) {
	actx, span := telemetry.StartPhaseSpan(ctx, phase)
	res, err := e.deps.Archiver.Archive(actx)
	telemetry.EndSpan(span, err)
	if err != nil {
		if m := e.deps.Metrics; m != nil {
			m.RecordArchiveFailure(archiveFailureReason(err))
		}
		return nil, fmt.Errorf("%s: %w", phase, err)
	}
	if m := e.deps.Metrics; m != nil {
		m.RecordArchived(res.Entry.Sequence, res.Verified)
	}

	id := res.Entry.ID()
	cctx, span := telemetry.StartPhaseSpan(ctx, "commit")
	err = e.deps.Committer.Commit(cctx, res.Entry, res.Prompt, res.Story)
	telemetry.EndSpan(span, err)
	if err != nil {
		if m := e.deps.Metrics; m != nil {
			m.RecordCommit("failed")
		}
		return res, fmt.Errorf("commit %s: %w", id, err)
	}
	if m := e.deps.Metrics; m != nil {
		m.RecordCommit("committed")
	}
	report.Committed = append(report.Committed, id)
	return res, nil
}

func (e *Engine) finish(report *Report, err error, log *zap.Logger) {
	duration := report.Finished.Sub(report.Started)

	if m := e.deps.Metrics; m != nil {
		if report.Outcome == OutcomeSkipped {
			m.RecordCycleSkipped(report.SkipReason)
		} else {
			m.RecordCycle(report.Outcome, duration, report.Finished)
		}
	}

	switch report.Outcome {
	case OutcomeFailed:
		log.Error("cycle failed",
			zap.Duration("duration", duration),
			zap.Strings("committed", report.Committed),
			zap.Error(err),
		)
	case OutcomeSkipped:
		log.Info("cycle skipped", zap.String("reason", report.SkipReason))
	default:
		e.lastSuccess.Store(report.Finished.UnixNano())
		log.Info("cycle finished",
			zap.String("outcome", report.Outcome),
			zap.String("staging", report.Staging.State.String()),
			zap.Strings("committed", report.Committed),
			zap.Duration("duration", duration),
		)
	}
}

func archiveFailureReason(err error) string {
	switch {
	case errors.Is(err, archive.ErrNothingToArchive):
		return "nothing_to_archive"
	case errors.Is(err, archive.ErrIncompleteStaging):
		return "incomplete_staging"
	case errors.Is(err, archive.ErrRelocation):
		return "relocation"
	case errors.Is(err, archive.ErrNotVisible):
		return "not_visible"
	case errors.Is(err, archive.ErrMalformedName):
		return "malformed_name"
	default:
		return "other"
	}
}
