package clientv2

import (
	"net/http"
)

const (
	InterceptorPriorityRetry     InterceptorPriority = 300
	InterceptorPrioritySetHeader InterceptorPriority = 400
	InterceptorPriorityNormal    InterceptorPriority = 500
	InterceptorPriorityAuth      InterceptorPriority = 600
	InterceptorPriorityLog       InterceptorPriority = 700
)

type InterceptorPriority int

type Interceptor interface {
	// Priority 数字越小优先级越高
	Priority() InterceptorPriority

	// Intercept 拦截处理函数
	Intercept(req *http.Request, handler Handler) (*http.Response, error)
}

type Interceptors []Interceptor

func (is Interceptors) Less(i, j int) bool {
	return is[i].Priority() < is[j].Priority()
}

func (is Interceptors) Swap(i, j int) {
	is[i], is[j] = is[j], is[i]
}

func (is Interceptors) Len() int {
	return len(is)
}
