package clientv2

import (
	"context"
	"net/http"
	"time"

	"github.com/rootnroll/go-sdk/backoff"
	internal_io "github.com/rootnroll/go-sdk/internal/io"
	"github.com/rootnroll/go-sdk/retrier"
)

type RetryConfig struct {
	RetryMax int             // 最大重试次数
	Backoff  backoff.Backoff // 重试时间间隔
	Retrier  retrier.Retrier // 重试器
}

func (c *RetryConfig) init() {
	if c == nil {
		return
	}

	if c.RetryMax < 0 {
		c.RetryMax = 0
	}

	if c.Backoff == nil {
		c.Backoff = backoff.NewFixedBackoff(0)
	}

	if c.Retrier == nil {
		c.Retrier = retrier.NewNeverRetrier()
	}
}

type retryInterceptor struct {
	config RetryConfig
}

func NewRetryInterceptor(config RetryConfig) Interceptor {
	config.init()
	return &retryInterceptor{
		config: config,
	}
}

func (r *retryInterceptor) Priority() InterceptorPriority {
	return InterceptorPriorityRetry
}

// Intercept 重试次数用尽后返回最后一次的响应，不额外构造错误
func (r *retryInterceptor) Intercept(req *http.Request, handler Handler) (resp *http.Response, err error) {
	// 不重试
	if r.config.RetryMax == 0 {
		return handler(req)
	}

	ctx := req.Context()
	for i := 0; ; i++ {
		// Clone 防止后面 Handler 处理对 req 有污染
		reqBefore := req.Clone(ctx)
		resp, err = handler(req)

		if i >= r.config.RetryMax {
			return resp, err
		}
		if r.config.Retrier.Retry(resp, err, &retrier.RetrierOptions{Attempts: i, Request: req}) != retrier.RetryRequest {
			return resp, err
		}
		if !rewindRequestBody(reqBefore) {
			return resp, err
		}
		req = reqBefore

		retryInterval := r.config.Backoff.Time(ctx, &backoff.BackoffOptions{Attempts: i})
		if resp != nil && resp.Body != nil {
			internal_io.SinkAll(resp.Body)
			resp.Body.Close()
		}
		if retryInterval <= 0 {
			continue
		}
		if err = sleep(ctx, retryInterval); err != nil {
			return nil, err
		}
	}
}

func rewindRequestBody(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return true
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return false
		}
		req.Body = body
		return true
	}
	return internal_io.Rewind(req.Body)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
