package retry

import "context"

// RunWithResult 按策略重试返回值的操作，成功时返回最后一次的结果，失败时返回零值。
func RunWithResult[T any](ctx context.Context, e *Executor, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := e.RunPolicy(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, p)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
