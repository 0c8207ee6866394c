package clientv2

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internal_io "github.com/rootnroll/go-sdk/internal/io"
)

const maxLoggedBodySize = 4096

type logInterceptor struct {
	logger  *zap.Logger
	timeout time.Duration
}

// NewLogInterceptor 记录每一次实际发出的请求和收到的响应
//
// 请求以 debug 级别记录；非 2xx 的响应以 info 级别记录，其余响应以 debug 级别记录
func NewLogInterceptor(logger *zap.Logger, timeout time.Duration) Interceptor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logInterceptor{logger: logger, timeout: timeout}
}

func (r *logInterceptor) Priority() InterceptorPriority {
	return InterceptorPriorityLog
}

func (r *logInterceptor) Intercept(req *http.Request, handler Handler) (*http.Response, error) {
	if req == nil || !r.logger.Core().Enabled(zap.InfoLevel) && !r.logger.Core().Enabled(zap.DebugLevel) {
		return handler(req)
	}

	log := r.logger.With(
		zap.String("request_id", uuid.NewString()[:8]),
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Duration("timeout", r.timeout),
	)
	log.Debug("Sending API request", zap.ByteString("data", requestBody(req)))

	resp, err := handler(req)
	if err != nil {
		log.Info("API request failed", zap.Error(err))
		return resp, err
	}
	if resp == nil {
		return resp, err
	}

	data := bufferResponseBody(resp)
	if resp.StatusCode/100 != 2 {
		log.Info("Received API response", zap.Int("status_code", resp.StatusCode), zap.ByteString("data", data))
	} else {
		log.Debug("Received API response", zap.Int("status_code", resp.StatusCode), zap.ByteString("data", data))
	}
	return resp, err
}

func requestBody(req *http.Request) []byte {
	if req.GetBody == nil {
		return nil
	}
	body, err := req.GetBody()
	if err != nil || body == nil {
		return nil
	}
	defer body.Close()
	data, _ := internal_io.ReadAll(io.LimitReader(body, maxLoggedBodySize))
	return data
}

// bufferResponseBody 读出响应 body 用于记录，并替换为可再次读取的副本
func bufferResponseBody(resp *http.Response) []byte {
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = internal_io.NewBytesNopCloser(data)
	if err != nil {
		return nil
	}
	if len(data) > maxLoggedBodySize {
		return data[:maxLoggedBodySize]
	}
	return data
}
