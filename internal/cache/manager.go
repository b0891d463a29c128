// Package cache provides internal Redis-backed coordination.
// This package is internal and should not be imported by external projects.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrClosed 管理器已关闭
var ErrClosed = errors.New("cache manager is closed")

// releaseScript 只有持有者本人才能删除租约
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// =============================================================================
// 🔐 周期租约管理器
// =============================================================================

// Manager 基于 Redis 的周期租约管理器。
// 多副本部署时保证同一时刻至多一个归档周期在运行。
type Manager struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Config 租约配置
type Config struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr"`

	// 密码
	Password string `yaml:"password" json:"password"`

	// 数据库编号
	DB int `yaml:"db" json:"db"`

	// 租约键
	LeaseKey string `yaml:"lease_key" json:"lease_key"`

	// 租约有效期，需长于最慢周期，进程崩溃后由过期释放
	LeaseTTL time.Duration `yaml:"lease_ttl" json:"lease_ttl"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size"`

	// 最小空闲连接数
	MinIdleConns int `yaml:"min_idle_conns" json:"min_idle_conns"`
}

// DefaultConfig 返回默认租约配置
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		LeaseKey:     "dallevision:cycle:lease",
		LeaseTTL:     5 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// NewManager 连接 Redis 并创建租约管理器
func NewManager(config Config, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.LeaseKey == "" {
		config.LeaseKey = DefaultConfig().LeaseKey
	}
	if config.LeaseTTL <= 0 {
		return nil, fmt.Errorf("lease ttl must be positive, got %s", config.LeaseTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	m := &Manager{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "lease")),
	}

	logger.Info("lease manager initialized",
		zap.String("addr", config.Addr),
		zap.String("key", config.LeaseKey),
		zap.Duration("ttl", config.LeaseTTL),
	)

	return m, nil
}

// =============================================================================
// 🎯 核心方法
// =============================================================================

// AcquireLease 尝试以 holder 身份获取租约（SET NX PX）。
// 租约已被他人持有时返回 false, nil。
func (m *Manager) AcquireLease(ctx context.Context, holder string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}

	ok, err := m.redis.SetNX(ctx, m.config.LeaseKey, holder, m.config.LeaseTTL).Result()
	if err != nil {
		m.logger.Error("lease acquire failed", zap.String("holder", holder), zap.Error(err))
		return false, fmt.Errorf("lease acquire failed: %w", err)
	}

	if !ok {
		m.logger.Debug("lease held by another cycle", zap.String("holder", holder))
	}
	return ok, nil
}

// ReleaseLease 释放 holder 持有的租约。
// 租约已过期或被他人持有时返回 false, nil，不会误删他人的租约。
func (m *Manager) ReleaseLease(ctx context.Context, holder string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, ErrClosed
	}

	n, err := releaseScript.Run(ctx, m.redis, []string{m.config.LeaseKey}, holder).Int64()
	if err != nil {
		m.logger.Error("lease release failed", zap.String("holder", holder), zap.Error(err))
		return false, fmt.Errorf("lease release failed: %w", err)
	}

	if n == 0 {
		m.logger.Warn("lease was not held at release, it may have expired mid-cycle",
			zap.String("holder", holder))
		return false, nil
	}
	return true, nil
}

// Holder 返回当前租约持有者，无人持有时返回空字符串
func (m *Manager) Holder(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrClosed
	}

	val, err := m.redis.Get(ctx, m.config.LeaseKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lease lookup failed: %w", err)
	}
	return val, nil
}

// Ping 检查 Redis 连接
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	return m.redis.Ping(ctx).Err()
}

// Close 关闭管理器
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	m.logger.Info("closing lease manager")

	return m.redis.Close()
}
