package clientv2

import (
	"net/http"

	"github.com/rootnroll/go-sdk/conf"
)

type defaultHeaderInterceptor struct{}

func newDefaultHeaderInterceptor() Interceptor {
	return defaultHeaderInterceptor{}
}

func (defaultHeaderInterceptor) Priority() InterceptorPriority {
	return InterceptorPrioritySetHeader
}

func (defaultHeaderInterceptor) Intercept(req *http.Request, handler Handler) (*http.Response, error) {
	if req != nil {
		if req.Header == nil {
			req.Header = http.Header{}
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", conf.UserAgent())
		}
		if req.Header.Get("Accept") == "" {
			req.Header.Set("Accept", conf.CONTENT_TYPE_JSON)
		}
	}
	return handler(req)
}
