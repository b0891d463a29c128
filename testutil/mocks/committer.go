// Package mocks 提供周期引擎依赖的测试替身。
package mocks

import (
	"context"
	"sync"

	"github.com/BaSui01/dallevision/internal/archive"
)

// Commit 一次元数据提交
type Commit struct {
	ID     string
	Prompt string
	Story  string
}

// Committer 记录提交的内存实现。设置 Err 后所有提交失败。
type Committer struct {
	mu      sync.Mutex
	commits []Commit
	Err     error
}

// Commit 记录一次提交
func (c *Committer) Commit(_ context.Context, entry archive.Entry, prompt, story string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.commits = append(c.commits, Commit{ID: entry.ID(), Prompt: prompt, Story: story})
	return nil
}

// Commits 返回已记录提交的副本
func (c *Committer) Commits() []Commit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Commit(nil), c.commits...)
}

// IDs 按提交顺序返回条目 ID
func (c *Committer) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.commits))
	for i, commit := range c.commits {
		out[i] = commit.ID
	}
	return out
}
