package conf

import "time"

const Version = "1.3.0"

const (
	CONTENT_TYPE_JSON = "application/json"
)

const (
	// DefaultAPIURL Root'n'Roll API 的默认地址
	DefaultAPIURL = "https://au.rootnroll.com/api"

	// DefaultTimeout 单次 HTTP 请求的默认超时时长
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries 可重试请求的默认最大重试次数
	DefaultMaxRetries = 3

	// DefaultBackoffFactor 指数退避的基础时长
	DefaultBackoffFactor = 500 * time.Millisecond

	// DefaultMaxBackoff 单次退避时长上限
	DefaultMaxBackoff = 2 * time.Minute
)

// DefaultRetryStatusCodes 默认会被重试的 HTTP 状态码
func DefaultRetryStatusCodes() []int {
	return []int{502}
}

func UserAgent() string {
	return "rootnroll-go-sdk/" + Version
}
