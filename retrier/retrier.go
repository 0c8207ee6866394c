package retrier

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

type (
	// RetryDecision 重试决策
	RetryDecision int
	// RetrierOptions 重试器选项
	RetrierOptions struct {
		// Attempts 已经重试的次数，从 0 开始
		Attempts int
		// Request 本次发出的请求，可能为空
		Request *http.Request
	}

	// Retrier 重试器接口
	Retrier interface {
		// Retry 判断是否重试
		Retry(*http.Response, error, *RetrierOptions) RetryDecision
	}

	neverRetrier      struct{}
	customizedRetrier struct {
		retryFn func(*http.Response, error, *RetrierOptions) RetryDecision
	}
	statusCodeRetrier struct {
		statusCodes map[int]struct{}
	}
)

const (
	// 不再重试
	DontRetry RetryDecision = iota

	// 重试当前请求
	RetryRequest
)

// NewRetrier 创建自定义重试器
func NewRetrier(fn func(*http.Response, error, *RetrierOptions) RetryDecision) Retrier {
	return customizedRetrier{retryFn: fn}
}

func (retrier customizedRetrier) Retry(response *http.Response, err error, options *RetrierOptions) RetryDecision {
	return retrier.retryFn(response, err, options)
}

// NewNeverRetrier 创建从不重试的重试器
func NewNeverRetrier() Retrier {
	return neverRetrier{}
}

func (neverRetrier) Retry(*http.Response, error, *RetrierOptions) RetryDecision {
	return DontRetry
}

// NewStatusCodeRetrier 创建默认重试器
//
// 响应状态码属于 statusCodes 时重试；没有响应时根据网络错误类型判断是否重试
func NewStatusCodeRetrier(statusCodes ...int) Retrier {
	codes := make(map[int]struct{}, len(statusCodes))
	for _, code := range statusCodes {
		codes[code] = struct{}{}
	}
	return statusCodeRetrier{statusCodes: codes}
}

func (retrier statusCodeRetrier) Retry(response *http.Response, err error, _ *RetrierOptions) RetryDecision {
	if err != nil {
		return getRetryDecisionForError(err)
	}
	if response == nil {
		return DontRetry
	}
	if _, ok := retrier.statusCodes[response.StatusCode]; ok {
		return RetryRequest
	}
	return DontRetry
}

// NewIdempotentRetrier 只对幂等请求沿用 base 的决策
//
// POST 和 PATCH 请求仅在连接被拒绝（请求一定没有发出）时重试
func NewIdempotentRetrier(base Retrier) Retrier {
	return NewRetrier(func(response *http.Response, err error, options *RetrierOptions) RetryDecision {
		decision := base.Retry(response, err, options)
		if decision != RetryRequest {
			return decision
		}
		method := ""
		if options != nil && options.Request != nil {
			method = options.Request.Method
		} else if response != nil && response.Request != nil {
			method = response.Request.Method
		}
		switch method {
		case http.MethodPost, http.MethodPatch:
			if err != nil && errors.Is(err, syscall.ECONNREFUSED) {
				return RetryRequest
			}
			return DontRetry
		}
		return decision
	})
}

func IsErrorRetryable(err error) bool {
	if err == nil {
		return false
	}
	return getRetryDecisionForError(err) == RetryRequest
}

func getRetryDecisionForError(err error) RetryDecision {
	if err == nil {
		return DontRetry
	}

	tryToUnwrapUnderlyingError := func(err error) (error, bool) {
		switch err := err.(type) {
		case *os.PathError:
			return err.Err, true
		case *os.LinkError:
			return err.Err, true
		case *os.SyscallError:
			return err.Err, true
		case *url.Error:
			return err.Err, true
		case *net.OpError:
			return err.Err, true
		}
		return err, false
	}
	unwrapUnderlyingError := func(err error) error {
		ok := true
		for ok {
			err, ok = tryToUnwrapUnderlyingError(err)
		}
		return err
	}

	unwrapedErr := unwrapUnderlyingError(err)
	if errors.Is(unwrapedErr, context.DeadlineExceeded) || errors.Is(unwrapedErr, context.Canceled) {
		return DontRetry
	} else if os.IsTimeout(unwrapedErr) {
		return RetryRequest
	} else if dnsError, ok := unwrapedErr.(*net.DNSError); ok {
		if dnsError.IsNotFound {
			return DontRetry
		}
		return RetryRequest
	} else if errno, ok := unwrapedErr.(syscall.Errno); ok {
		switch errno {
		case syscall.ECONNREFUSED, syscall.ECONNABORTED, syscall.ECONNRESET:
			return RetryRequest
		default:
			return DontRetry
		}
	}
	desc := unwrapedErr.Error()
	if strings.Contains(desc, "use of closed network connection") ||
		strings.Contains(desc, "unexpected EOF") ||
		strings.Contains(desc, "transport connection broken") ||
		strings.Contains(desc, "server closed idle connection") ||
		strings.Contains(desc, "connection reset by peer") {
		return RetryRequest
	}
	return DontRetry
}
