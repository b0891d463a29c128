package generator

import (
	"fmt"
	"net/http"
)

// UpstreamError 生成接口返回的非成功响应
type UpstreamError struct {
	Kind       string `json:"kind"`
	HTTPStatus int    `json:"http_status"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: status=%d body=%s", e.Kind, e.HTTPStatus, e.Message)
}

// newUpstreamError 限流与 5xx 视为可重试
func newUpstreamError(kind string, status int, body []byte) *UpstreamError {
	return &UpstreamError{
		Kind:       kind,
		HTTPStatus: status,
		Message:    string(body),
		Retryable:  status == http.StatusTooManyRequests || status >= http.StatusInternalServerError,
	}
}
