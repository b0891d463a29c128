package ranking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/dallevision/internal/archive"
	"github.com/BaSui01/dallevision/internal/retry"
)

var (
	// ErrCommitFailed 元数据提交在重试耗尽后仍失败
	ErrCommitFailed = errors.New("metadata commit failed")

	// ErrUpvoteFailed 投票更新在重试耗尽后仍失败
	ErrUpvoteFailed = errors.New("upvote failed")
)

// =============================================================================
// 📝 元数据记录器
// =============================================================================

// Recorder 通过固定延迟重试写入元数据
type Recorder struct {
	store  Store
	exec   *retry.Executor
	policy retry.Policy
	logger *zap.Logger
}

// NewRecorder 创建记录器
func NewRecorder(store Store, exec *retry.Executor, policy retry.Policy, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exec == nil {
		exec = retry.NewExecutor(logger)
	}
	return &Recorder{
		store:  store,
		exec:   exec,
		policy: policy,
		logger: logger.With(zap.String("component", "recorder")),
	}
}

// Commit 为一个归档条目写入记录，初始票数为 1。
// 每次尝试使用新的记录副本，避免上一次失败留下的字段状态。
func (r *Recorder) Commit(ctx context.Context, entry archive.Entry, prompt, story string) error {
	id := entry.ID()
	err := r.exec.RunPolicy(ctx, func(ctx context.Context) error {
		return r.store.InsertRecord(ctx, &Ranking{
			PictureID: id,
			Prompt:    prompt,
			Story:     story,
			Upvotes:   DefaultUpvotes,
		})
	}, r.policy)
	if err != nil {
		r.logger.Error("metadata commit failed, entry stays archived without a record",
			zap.String("id", id),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s: %w", ErrCommitFailed, id, err)
	}

	r.logger.Info("metadata committed", zap.String("id", id))
	return nil
}

// Upvote 对 id 投一票，返回受影响行数。
// 标识符不存在时影响 0 行，只记录日志。
func (r *Recorder) Upvote(ctx context.Context, id string) (int64, error) {
	affected, err := retry.RunWithResult(ctx, r.exec, r.policy, func(ctx context.Context) (int64, error) {
		return r.store.IncrementUpvote(ctx, id)
	})
	if err != nil {
		r.logger.Error("upvote failed", zap.String("id", id), zap.Error(err))
		return 0, fmt.Errorf("%w: %s: %w", ErrUpvoteFailed, id, err)
	}

	if affected == 0 {
		r.logger.Warn("upvote matched no record", zap.String("id", id))
		return 0, nil
	}

	r.logger.Info("upvote recorded", zap.String("id", id))
	return affected, nil
}
