package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BaSui01/dallevision/internal/archive"
)

// =============================================================================
// 🎯 上下文辅助
// =============================================================================

// TestContext 返回带超时的测试上下文
func TestContext(t *testing.T) context.Context {
	return TestContextWithTimeout(t, 30*time.Second)
}

// TestContextWithTimeout 返回带自定义超时的测试上下文
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext 返回已取消的上下文
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// =============================================================================
// 📁 文件布局
// =============================================================================

// StageTriplet 在 dir 中写入完整的暂存三元组
func StageTriplet(t testing.TB, dir, prompt, story string) {
	t.Helper()
	mustWrite(t, filepath.Join(dir, archive.StagedImage), []byte{0xFF, 0xD8, 0xFF})
	mustWrite(t, filepath.Join(dir, archive.StagedPrompt), []byte(prompt))
	mustWrite(t, filepath.Join(dir, archive.StagedStory), []byte(story))
}

// WriteArchivedEntry 按归档布局写入 root 下 day 的第 seq 个条目
func WriteArchivedEntry(t testing.TB, root string, day archive.Day, seq int, prompt, story string) archive.Entry {
	t.Helper()
	e := archive.NewEntry(root, day, seq)
	mustWrite(t, e.ImagePath, []byte{0xFF, 0xD8, 0xFF})
	mustWrite(t, e.PromptPath, []byte(prompt))
	mustWrite(t, e.StoryPath, []byte(story))
	return e
}

func mustWrite(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// =============================================================================
// ⏳ 异步断言
// =============================================================================

// AssertEventuallyTrue 断言条件在 timeout 内变为真
func AssertEventuallyTrue(t testing.TB, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("condition did not become true within %v", timeout)
}
