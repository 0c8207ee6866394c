package backoff

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/alex-ant/gomath/rational"
)

// MaxWait 是指数退避能够给出的最大等待时长，
// 留出余量以便再乘以随机放大系数时不会溢出 time.Duration。
const MaxWait = time.Duration(math.MaxInt64 / 4)

type (
	// Backoff 给出第 n 次重试前需要等待的时长
	Backoff interface {
		Time(context.Context, *BackoffOptions) time.Duration
	}

	// BackoffOptions 退避器选项
	BackoffOptions struct {
		// Attempts 已经重试的次数，从 0 开始
		Attempts int
	}

	backoffFunc func(context.Context, *BackoffOptions) time.Duration
)

func (fn backoffFunc) Time(ctx context.Context, opts *BackoffOptions) time.Duration {
	return fn(ctx, opts)
}

// NewBackoff 将函数包装为 Backoff
func NewBackoff(fn func(context.Context, *BackoffOptions) time.Duration) Backoff {
	return backoffFunc(fn)
}

func attemptsOf(opts *BackoffOptions) int {
	if opts == nil || opts.Attempts < 0 {
		return 0
	}
	return opts.Attempts
}

// NewFixedBackoff 每次都等待 wait
func NewFixedBackoff(wait time.Duration) Backoff {
	return backoffFunc(func(context.Context, *BackoffOptions) time.Duration {
		return wait
	})
}

type exponentialBackoff struct {
	wait   time.Duration
	factor time.Duration
}

// NewExponentialBackoff 第 n 次重试等待 wait * baseNumber^n，结果不超过 MaxWait
func NewExponentialBackoff(wait time.Duration, baseNumber int64) Backoff {
	if baseNumber < 1 {
		baseNumber = 1
	}
	return exponentialBackoff{wait: wait, factor: time.Duration(baseNumber)}
}

func (e exponentialBackoff) Time(_ context.Context, opts *BackoffOptions) time.Duration {
	wait := e.wait
	if wait <= 0 || e.factor == 1 {
		return wait
	}
	for n := attemptsOf(opts); n > 0; n-- {
		if wait > MaxWait/e.factor {
			return MaxWait
		}
		wait *= e.factor
	}
	return wait
}

type randomizedBackoff struct {
	base         Backoff
	lower, upper rational.Rational

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomizedBackoff 在 base 给出的时长上乘以 [minification, magnification) 内的随机系数
func NewRandomizedBackoff(base Backoff, minification, magnification rational.Rational) Backoff {
	if minification.LessThanNum(0) {
		panic("minification must be greater than or equal to 0")
	}
	if magnification.LessThanNum(0) || magnification.GetNumerator() == 0 {
		panic("magnification must be greater than 0")
	}
	return &randomizedBackoff{
		base:  base,
		lower: minification,
		upper: magnification,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *randomizedBackoff) Time(ctx context.Context, opts *BackoffOptions) time.Duration {
	wait := int64(r.base.Time(ctx, opts))
	from := r.lower.MultiplyByNum(wait)
	span := int64(r.upper.MultiplyByNum(wait).Subtract(from).Float64())
	if span <= 0 {
		return time.Duration(from.Float64())
	}

	r.mu.Lock()
	jitter := r.rnd.Int63n(span)
	r.mu.Unlock()
	return time.Duration(from.AddNum(jitter).Float64())
}

type limitedBackoff struct {
	base     Backoff
	min, max time.Duration
}

// NewLimitedBackoff 把 base 给出的时长限制在 [min, max] 内
func NewLimitedBackoff(base Backoff, min, max time.Duration) Backoff {
	return limitedBackoff{base: base, min: min, max: max}
}

func (l limitedBackoff) Time(ctx context.Context, opts *BackoffOptions) time.Duration {
	switch wait := l.base.Time(ctx, opts); {
	case wait < l.min:
		return l.min
	case wait > l.max:
		return l.max
	default:
		return wait
	}
}
