package clock

import (
	"sync"
	"time"
)

// =============================================================================
// ⏰ 时钟接口
// =============================================================================

// Clock 时钟抽象
type Clock interface {
	// Now 返回当前时间
	Now() time.Time

	// NewTicker 返回周期性触发的 Ticker，d 必须为正数
	NewTicker(d time.Duration) Ticker
}

// Ticker 周期触发器
type Ticker interface {
	// C 返回触发通道
	C() <-chan time.Time

	// Stop 停止触发，不关闭通道
	Stop()
}

// =============================================================================
// 🕰️ 生产实现
// =============================================================================

type realClock struct{}

// Real 返回基于系统时间的时钟
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// =============================================================================
// 🧪 测试实现
// =============================================================================

// Fake 可手动推进的时钟，并发安全
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake 创建从 t 开始的 Fake 时钟
func NewFake(t time.Time) *Fake {
	return &Fake{now: t}
}

// Now 实现 Clock.Now
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set 将时间设置为 t（不触发 Ticker）
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance 推进时间，并向到期的 Ticker 投递一次触发。
// 与 time.Ticker 一致，消费者来不及读取时触发会被丢弃。
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := make([]*fakeTicker, len(f.tickers))
	copy(tickers, f.tickers)
	f.mu.Unlock()

	for _, t := range tickers {
		t.advance(now)
	}
}

// NewTicker 实现 Clock.NewTicker
func (f *Fake) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		ch:     make(chan time.Time, 1),
		period: d,
		next:   f.now.Add(d),
	}
	f.tickers = append(f.tickers, t)
	return t
}

type fakeTicker struct {
	mu      sync.Mutex
	ch      chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) advance(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || now.Before(t.next) {
		return
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.period)
	}

	select {
	case t.ch <- now:
	default:
	}
}
