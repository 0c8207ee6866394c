package clientv2

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rootnroll/go-sdk/conf"
	internal_io "github.com/rootnroll/go-sdk/internal/io"
)

const (
	RequestMethodGet    = http.MethodGet
	RequestMethodPost   = http.MethodPost
	RequestMethodDelete = http.MethodDelete
)

type GetRequestBody func(options *RequestParams) (io.ReadCloser, error)

func GetJsonRequestBody(object interface{}) (GetRequestBody, error) {
	reqBody, err := json.Marshal(object)
	if err != nil {
		return nil, err
	}
	return func(o *RequestParams) (io.ReadCloser, error) {
		o.Header.Set("Content-Type", conf.CONTENT_TYPE_JSON)
		o.Header.Set("Content-Length", strconv.Itoa(len(reqBody)))
		return internal_io.NewBytesNopCloser(reqBody), nil
	}, nil
}

type RequestParams struct {
	Context context.Context
	Method  string
	Url     string
	Header  http.Header
	GetBody GetRequestBody
}

func (o *RequestParams) init() {
	if o.Context == nil {
		o.Context = context.Background()
	}

	if len(o.Method) == 0 {
		o.Method = RequestMethodGet
	}

	if o.Header == nil {
		o.Header = http.Header{}
	}

	if o.GetBody == nil {
		o.GetBody = func(options *RequestParams) (io.ReadCloser, error) {
			return nil, nil
		}
	}
}

func NewRequest(options RequestParams) (req *http.Request, err error) {
	options.init()

	body, err := options.GetBody(&options)
	if err != nil {
		return nil, err
	}
	if body == nil {
		req, err = http.NewRequestWithContext(options.Context, options.Method, options.Url, nil)
	} else {
		req, err = http.NewRequestWithContext(options.Context, options.Method, options.Url, body)
	}
	if err != nil {
		return
	}
	req.Header = options.Header
	if body != nil {
		if sized, ok := body.(*internal_io.BytesNopCloser); ok {
			req.ContentLength = sized.Size()
		}
		req.GetBody = func() (io.ReadCloser, error) {
			return options.GetBody(&options)
		}
	}
	return
}
