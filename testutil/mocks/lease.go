package mocks

import (
	"context"
	"sync"
)

// Lease 周期租约替身。Held 为 true 时模拟其他实例持有租约。
type Lease struct {
	mu       sync.Mutex
	Held     bool
	Err      error
	acquired []string
	released []string
}

func (l *Lease) AcquireLease(_ context.Context, holder string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	if l.Held {
		return false, nil
	}
	l.Held = true
	l.acquired = append(l.acquired, holder)
	return true, nil
}

func (l *Lease) ReleaseLease(_ context.Context, holder string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, holder)
	l.Held = false
	return true, nil
}

// Acquired 返回成功获取租约的持有者
func (l *Lease) Acquired() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.acquired...)
}

// Released 返回释放过租约的持有者
func (l *Lease) Released() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.released...)
}
