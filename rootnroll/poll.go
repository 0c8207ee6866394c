package rootnroll

import (
	"context"
	"time"
)

// PollOption 配置等待类方法的轮询行为。
type PollOption func(*pollOpts)

type pollOpts struct {
	interval time.Duration
	timeout  time.Duration
	onPoll   func(attempt int)
}

func defaultPollOpts(defaultInterval, defaultTimeout time.Duration, opts []PollOption) *pollOpts {
	o := &pollOpts{
		interval: defaultInterval,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.interval <= 0 {
		o.interval = defaultInterval
	}
	if o.timeout <= 0 {
		o.timeout = defaultTimeout
	}
	return o
}

// WithPollInterval 设置轮询间隔。
func WithPollInterval(d time.Duration) PollOption {
	return func(o *pollOpts) { o.interval = d }
}

// WithWaitTimeout 设置等待的总时长，超时后返回 *WaitTimeoutError。
func WithWaitTimeout(d time.Duration) PollOption {
	return func(o *pollOpts) { o.timeout = d }
}

// WithOnPoll 设置每次轮询时的回调函数。
// attempt 从 1 开始递增。
func WithOnPoll(fn func(attempt int)) PollOption {
	return func(o *pollOpts) { o.onPoll = fn }
}

// pollResult 单次轮询的结果。
type pollResult[T any] struct {
	done   bool
	value  T
	status string
}

// pollLoop 是所有 Wait 方法共享的轮询循环。
// 每次轮询前检查已用时间，达到 timeout 后返回 *WaitTimeoutError；
// pollFn 返回错误时立即结束。
func pollLoop[T any](ctx context.Context, opts *pollOpts, resource string, id ID, pollFn func(ctx context.Context) (pollResult[T], error)) (T, error) {
	var (
		zero       T
		lastStatus string
		timer      *time.Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	for attempt := 1; ; attempt++ {
		if time.Since(start) >= opts.timeout {
			return zero, &WaitTimeoutError{Resource: resource, ID: id, Timeout: opts.timeout, LastStatus: lastStatus}
		}
		if opts.onPoll != nil {
			opts.onPoll(attempt)
		}

		result, err := pollFn(ctx)
		if err != nil {
			return zero, err
		}
		if result.done {
			return result.value, nil
		}
		lastStatus = result.status

		if timer == nil {
			timer = time.NewTimer(opts.interval)
		} else {
			timer.Reset(opts.interval)
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
