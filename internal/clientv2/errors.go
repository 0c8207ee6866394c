package clientv2

import (
	"encoding/json"
	"fmt"
	"net/http"

	internal_io "github.com/rootnroll/go-sdk/internal/io"
)

// ErrorInfo API 返回的非 2xx 响应
type ErrorInfo struct {
	StatusCode int
	Body       []byte

	// Code 从响应 body 中解析出的错误码（如果有）
	Code string
	// Message 从响应 body 中解析出的错误消息（如果有）
	Message string
}

func (e *ErrorInfo) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
	}
	if len(e.Body) > 0 {
		return fmt.Sprintf("api error: status %d, body: %s", e.StatusCode, string(e.Body))
	}
	return fmt.Sprintf("api error: status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// ResponseError 读取并关闭响应 body，构造 ErrorInfo
func ResponseError(resp *http.Response) error {
	e := &ErrorInfo{StatusCode: resp.StatusCode}
	if resp.Body != nil {
		if body, err := internal_io.ReadAll(resp.Body); err == nil {
			e.Body = body
		}
		resp.Body.Close()
		resp.Body = http.NoBody
	}
	e.Code, e.Message = parseErrorBody(e.Body)
	return e
}

// parseErrorBody 尝试从 JSON body 中解析 code 和 message，message 缺失时使用 error 或 detail 字段
func parseErrorBody(body []byte) (code, message string) {
	if len(body) == 0 {
		return "", ""
	}
	var parsed struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Error   string      `json:"error"`
		Detail  interface{} `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return "", ""
	}
	message = parsed.Message
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		if detail, ok := parsed.Detail.(string); ok {
			message = detail
		}
	}
	return parsed.Code, message
}
