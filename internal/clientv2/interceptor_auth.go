package clientv2

import (
	"net/http"

	"github.com/rootnroll/go-sdk/credentials"
)

type AuthConfig struct {
	// 鉴权参数
	Credentials credentials.CredentialsProvider
	// 签名前回调函数
	BeforeSign func(*http.Request)
	// 签名后回调函数
	AfterSign func(*http.Request)
	// 签名失败回调函数
	SignError func(*http.Request, error)
}

type authInterceptor struct {
	config AuthConfig
}

func NewAuthInterceptor(config AuthConfig) Interceptor {
	return &authInterceptor{
		config: config,
	}
}

func (interceptor *authInterceptor) Priority() InterceptorPriority {
	return InterceptorPriorityAuth
}

func (interceptor *authInterceptor) Intercept(req *http.Request, handler Handler) (*http.Response, error) {
	if interceptor == nil || req == nil || interceptor.config.Credentials == nil {
		return handler(req)
	}

	if interceptor.config.BeforeSign != nil {
		interceptor.config.BeforeSign(req)
	}
	cred, err := interceptor.config.Credentials.Get(req.Context())
	if err == nil {
		err = cred.AddToken(req)
	}
	if err != nil {
		if interceptor.config.SignError != nil {
			interceptor.config.SignError(req, err)
		}
		return nil, err
	}
	if interceptor.config.AfterSign != nil {
		interceptor.config.AfterSign(req)
	}

	return handler(req)
}
