package mocks

import (
	"context"
	"errors"
	"sync"
)

// ErrNoScriptedChat Chats 已耗尽
var ErrNoScriptedChat = errors.New("mocks: no scripted chat response left")

// Backend 文本与图像接口替身，Chats 按调用顺序依次返回
type Backend struct {
	mu sync.Mutex

	Chats      []string
	ImageBytes []byte
	ChatErr    error
	ImageErr   error

	prompts   []string
	imageArgs []string
}

func (b *Backend) Chat(_ context.Context, _ string, prompt string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prompts = append(b.prompts, prompt)
	if b.ChatErr != nil {
		return "", b.ChatErr
	}
	if len(b.Chats) == 0 {
		return "", ErrNoScriptedChat
	}
	out := b.Chats[0]
	b.Chats = b.Chats[1:]
	return out, nil
}

func (b *Backend) Image(_ context.Context, model, prompt, size string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.imageArgs = append(b.imageArgs, model, prompt, size)
	if b.ImageErr != nil {
		return nil, b.ImageErr
	}
	return b.ImageBytes, nil
}

// Prompts 返回 Chat 收到的提示词
func (b *Backend) Prompts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.prompts...)
}

// ImageArgs 返回 Image 收到的 model、prompt、size，按调用顺序平铺
func (b *Backend) ImageArgs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.imageArgs...)
}
