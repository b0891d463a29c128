package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/BaSui01/dallevision/config"
	"github.com/BaSui01/dallevision/internal/archive"
	"go.uber.org/zap"
)

// ErrStagingOccupied 暂存目录中已有文件，生成会与待归档内容冲突
var ErrStagingOccupied = errors.New("staging directory is not empty")

// =============================================================================
// 🎨 内容生成器
// =============================================================================

// Backend 文本与图像生成接口，Client 为其 OpenAI 兼容实现
type Backend interface {
	Chat(ctx context.Context, model, prompt string) (string, error)
	Image(ctx context.Context, model, prompt, size string) ([]byte, error)
}

// Output 一次生成的结果
type Output struct {
	Terms       string
	Style       string
	ImagePrompt string
	Story       string
	ImageBytes  int
}

// Generator 调用上游生成画面描述、故事与图像，并写入暂存目录
type Generator struct {
	backend    Backend
	cfg        config.GeneratorConfig
	stagingDir string
	rng        *rand.Rand
	logger     *zap.Logger
}

// Option 生成器选项
type Option func(*Generator)

// WithRand 指定风格抽取所用的随机源
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) { g.rng = rng }
}

// New 创建生成器
func New(backend Backend, cfg config.GeneratorConfig, stagingDir string, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		backend:    backend,
		cfg:        cfg,
		stagingDir: stagingDir,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     logger.With(zap.String("component", "generator")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate 生成一组三元组写入暂存目录。
// 所有上游调用成功后才开始写文件，文件经同卷临时目录 rename 进入暂存目录。
func (g *Generator) Generate(ctx context.Context) (*Output, error) {
	if err := g.ensureEmptyStaging(); err != nil {
		return nil, err
	}
	g.removeStaleTemp()

	instructions, err := os.ReadFile(g.cfg.PromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	storyInstructions, err := os.ReadFile(g.cfg.StoryPromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read story prompt file: %w", err)
	}
	styles, err := LoadStyles(g.cfg.StylesFile)
	if err != nil {
		return nil, err
	}

	terms, err := g.backend.Chat(ctx, g.cfg.ChatModel, string(instructions))
	if err != nil {
		return nil, fmt.Errorf("prompt generation failed: %w", err)
	}
	terms = strings.TrimSpace(terms)

	out := &Output{Terms: terms, Style: PickStyle(g.rng, styles)}
	out.ImagePrompt = ImagePrompt(terms, out.Style)

	story, err := g.backend.Chat(ctx, g.cfg.ChatModel, StoryPrompt(string(storyInstructions), terms))
	if err != nil {
		return nil, fmt.Errorf("story generation failed: %w", err)
	}
	out.Story = story

	img, err := g.backend.Image(ctx, g.cfg.ImageModel, out.ImagePrompt, g.cfg.ImageSize)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	out.ImageBytes = len(img)

	if err := g.writeStaging(out.ImagePrompt, out.Story, img); err != nil {
		return nil, err
	}

	g.logger.Info("staging triplet generated",
		zap.String("style", out.Style),
		zap.Int("prompt_len", len(out.ImagePrompt)),
		zap.Int("story_len", len(out.Story)),
		zap.Int("image_bytes", out.ImageBytes),
	)
	return out, nil
}

func (g *Generator) ensureEmptyStaging() error {
	if err := os.MkdirAll(g.stagingDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	entries, err := os.ReadDir(g.stagingDir)
	if err != nil {
		return fmt.Errorf("failed to list staging directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %d entries in %s", ErrStagingOccupied, len(entries), g.stagingDir)
	}
	return nil
}

// tempPattern 中间文件目录的命名模式。目录建在暂存目录的父目录下，
// 与暂存目录同卷，rename 才是原子的。
const tempPattern = ".generate-*"

// writeStaging 先把三个文件完整写入临时目录，再逐个 rename 进暂存目录，图像最后。
// 暂存目录里出现的文件总是完整的；rename 中途失败只会留下残缺集合，下次校验会丢弃。
func (g *Generator) writeStaging(prompt, story string, img []byte) error {
	tmp, err := os.MkdirTemp(filepath.Dir(g.stagingDir), tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create generation temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			g.logger.Warn("failed to remove generation temp dir", zap.String("path", tmp), zap.Error(err))
		}
	}()

	files := []struct {
		name string
		data []byte
	}{
		{archive.StagedStory, []byte(story)},
		{archive.StagedPrompt, []byte(prompt)},
		{archive.StagedImage, img},
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(tmp, f.name), f.data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}

	var moved []string
	for _, f := range files {
		dst := filepath.Join(g.stagingDir, f.name)
		if err := os.Rename(filepath.Join(tmp, f.name), dst); err != nil {
			for _, m := range moved {
				if rmErr := os.Remove(m); rmErr != nil {
					g.logger.Warn("failed to remove partial staging file", zap.String("path", m), zap.Error(rmErr))
				}
			}
			return fmt.Errorf("failed to stage %s: %w", f.name, err)
		}
		moved = append(moved, dst)
	}
	return nil
}

// removeStaleTemp 清理上次进程中断时遗留的临时目录
func (g *Generator) removeStaleTemp() {
	stale, err := filepath.Glob(filepath.Join(filepath.Dir(g.stagingDir), tempPattern))
	if err != nil {
		return
	}
	for _, dir := range stale {
		if err := os.RemoveAll(dir); err != nil {
			g.logger.Warn("failed to remove stale generation temp dir", zap.String("path", dir), zap.Error(err))
			continue
		}
		g.logger.Info("removed stale generation temp dir", zap.String("path", dir))
	}
}
