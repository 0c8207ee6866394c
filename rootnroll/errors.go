package rootnroll

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rootnroll/go-sdk/credentials"
	"github.com/rootnroll/go-sdk/internal/clientv2"
)

// APIError 表示 API 返回的非 2xx HTTP 响应。
type APIError = clientv2.ErrorInfo

var (
	// ErrNotFound 资源不存在，用于等待过程中资源消失的情况。
	ErrNotFound = errors.New("rootnroll: resource not found")

	// ErrWaitTimeout 等待资源达到目标状态超时，所有 WaitTimeoutError 都匹配此错误。
	ErrWaitTimeout = errors.New("rootnroll: wait timed out")

	// ErrServerFailed 服务器进入 ERROR 状态。
	ErrServerFailed = errors.New("rootnroll: server is in ERROR status")

	// ErrMissingCredentials 没有配置用户名和密码。
	ErrMissingCredentials = credentials.ErrMissingCredentials
)

// WaitTimeoutError 等待超时错误，可以通过 errors.Is(err, ErrWaitTimeout) 判断。
type WaitTimeoutError struct {
	// Resource 资源类型，如 "server"、"sandbox"、"checker job"。
	Resource string
	// ID 资源 ID。
	ID ID
	// Timeout 等待的总时长。
	Timeout time.Duration
	// LastStatus 超时前最后一次观察到的状态。
	LastStatus string
}

// Error 实现 error 接口。
func (e *WaitTimeoutError) Error() string {
	msg := fmt.Sprintf("rootnroll: timed out after %s waiting for %s %s", e.Timeout, e.Resource, e.ID)
	if e.LastStatus != "" {
		msg += fmt.Sprintf(" (last status: %s)", e.LastStatus)
	}
	return msg
}

// Unwrap 返回 ErrWaitTimeout。
func (e *WaitTimeoutError) Unwrap() error {
	return ErrWaitTimeout
}

// IsNotFound 判断错误是否为 404 响应或 ErrNotFound。
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return true
	}
	return isNotFoundError(err)
}

// isNotFoundError 判断错误是否为 404 响应。
func isNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}
