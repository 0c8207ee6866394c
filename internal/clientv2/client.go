package clientv2

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	internal_io "github.com/rootnroll/go-sdk/internal/io"
)

type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

type Handler func(req *http.Request) (*http.Response, error)

type client struct {
	coreClient   Client
	interceptors []Interceptor
}

var errNoResponse = errors.New("unknown error, no response")

func NewClient(cli Client, interceptors ...Interceptor) Client {
	if cli == nil {
		if http.DefaultClient != nil {
			cli = http.DefaultClient
		} else {
			cli = &http.Client{}
		}
	}

	var is Interceptors = append([]Interceptor{}, interceptors...)
	is = append(is, newDefaultHeaderInterceptor())
	sort.Stable(is)

	// 反转，优先级数字最小的拦截器在最外层
	for i, j := 0, len(is)-1; i < j; i, j = i+1, j-1 {
		is[i], is[j] = is[j], is[i]
	}

	return &client{
		coreClient:   cli,
		interceptors: is,
	}
}

func (c *client) Do(req *http.Request) (*http.Response, error) {
	handler := func(req *http.Request) (*http.Response, error) {
		return c.coreClient.Do(req)
	}

	interceptors := c.interceptors
	for _, interceptor := range interceptors {
		h := handler
		i := interceptor
		handler = func(r *http.Request) (*http.Response, error) {
			return i.Intercept(r, h)
		}
	}

	return handler(req)
}

// Do 发送请求，非 2xx 的响应会以 *ErrorInfo 的形式返回，此时响应 body 已被读取并关闭
func Do(c Client, options RequestParams) (*http.Response, error) {
	req, err := NewRequest(options)
	if err != nil {
		return nil, err
	}

	return handleResponseAndError(c.Do(req))
}

func handleResponseAndError(resp *http.Response, err error) (*http.Response, error) {
	if err != nil {
		return resp, err
	}

	if resp == nil {
		return nil, errNoResponse
	}

	if resp.StatusCode/100 != 2 {
		return resp, ResponseError(resp)
	}

	return resp, nil
}

// DoAndDecodeJsonResponse 发送请求并将 2xx 响应的 JSON body 解析到 ret 中，body 为空时 ret 保持不变
func DoAndDecodeJsonResponse(c Client, options RequestParams, ret interface{}) error {
	resp, err := Do(c, options)
	defer func() {
		if resp != nil && resp.Body != nil {
			internal_io.SinkAll(resp.Body)
			resp.Body.Close()
		}
	}()

	if err != nil {
		return err
	}

	if ret == nil || resp.ContentLength == 0 || resp.Body == nil {
		return nil
	}

	body, err := internal_io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, ret)
}
