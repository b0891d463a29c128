package generator

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/dallevision/internal/ctxkeys"
	"github.com/BaSui01/dallevision/internal/tlsutil"
)

// ErrEmptyResponse 上游返回成功状态但没有可用内容
var ErrEmptyResponse = errors.New("upstream returned no content")

// Observer 每次上游请求结束后回调，kind 为 chat 或 image，status 为 HTTP 状态或 error
type Observer func(kind, status string, duration time.Duration)

// ClientConfig OpenAI 兼容接口配置
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client OpenAI 兼容的文本与图像接口客户端
type Client struct {
	cfg      ClientConfig
	client   *http.Client
	limiter  *rate.Limiter
	observer Observer
}

// NewClient 创建客户端。RequestsPerMinute <= 0 时不限速。
func NewClient(cfg ClientConfig, observer Observer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		// 一个周期最多三次请求，允许其一次性通过
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 3)
	}

	return &Client{
		cfg:      cfg,
		client:   tlsutil.SecureHTTPClient(timeout),
		limiter:  limiter,
		observer: observer,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type imageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
}

// Chat 发送单条 user 消息并返回首个回复内容
func (c *Client) Chat(ctx context.Context, model, prompt string) (string, error) {
	var resp chatResponse
	if err := c.post(ctx, "chat", "/v1/chat/completions", chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// Image 生成一张图像并返回其字节。优先请求 b64_json，上游只给 URL 时再下载。
func (c *Client) Image(ctx context.Context, model, prompt, size string) ([]byte, error) {
	var resp imageResponse
	if err := c.post(ctx, "image", "/v1/images/generations", imageRequest{
		Model:          model,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		ResponseFormat: "b64_json",
	}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation: %w", ErrEmptyResponse)
	}

	d := resp.Data[0]
	switch {
	case d.B64JSON != "":
		img, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image payload: %w", err)
		}
		return img, nil
	case d.URL != "":
		return c.download(ctx, d.URL)
	default:
		return nil, fmt.Errorf("image generation: %w", ErrEmptyResponse)
	}
}

func (c *Client) post(ctx context.Context, kind, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s request rate limited: %w", kind, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", kind, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.BaseURL, "/")+path,
		bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if id, ok := ctxkeys.CycleID(ctx); ok {
		httpReq.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.observe(kind, "error", time.Since(start))
		return fmt.Errorf("%s request failed: %w", kind, err)
	}
	defer resp.Body.Close()
	c.observe(kind, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newUpstreamError(kind, resp.StatusCode, errBody)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", kind, err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.observe("download", "error", time.Since(start))
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()
	c.observe("download", fmt.Sprintf("%d", resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 400 {
		return nil, newUpstreamError("download", resp.StatusCode, nil)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	if len(img) == 0 {
		return nil, fmt.Errorf("image download: %w", ErrEmptyResponse)
	}
	return img, nil
}

func (c *Client) observe(kind, status string, d time.Duration) {
	if c.observer != nil {
		c.observer(kind, status, d)
	}
}
