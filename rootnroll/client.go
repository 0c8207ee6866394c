package rootnroll

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alex-ant/gomath/rational"
	"go.uber.org/zap"

	"github.com/rootnroll/go-sdk/backoff"
	"github.com/rootnroll/go-sdk/client"
	"github.com/rootnroll/go-sdk/conf"
	"github.com/rootnroll/go-sdk/credentials"
	"github.com/rootnroll/go-sdk/internal/clientv2"
	"github.com/rootnroll/go-sdk/internal/configfile"
	"github.com/rootnroll/go-sdk/internal/env"
	"github.com/rootnroll/go-sdk/internal/log"
	"github.com/rootnroll/go-sdk/retrier"
)

// Config 是 Root'n'Roll 客户端的配置。
type Config struct {
	// Username 和 Password 是 HTTP Basic 鉴权信息（可选）。
	// 都为空时从 CredentialsProvider 获取，CredentialsProvider 也为空时
	// 依次读取环境变量 ROOTNROLL_USERNAME / ROOTNROLL_PASSWORD 和配置文件。
	Username string
	Password string

	// APIURL 是 API 服务地址（可选，默认依次读取 ROOTNROLL_API_URL、配置文件和 conf.DefaultAPIURL）。
	APIURL string `validate:"required,url"`

	// Timeout 是单次 HTTP 请求的超时时间（可选，默认值：conf.DefaultTimeout）。
	Timeout time.Duration `validate:"gte=0"`

	// MaxRetries 是最大重试次数（可选，默认值：conf.DefaultMaxRetries），负数表示不重试。
	MaxRetries int

	// BackoffFactor 是重试退避的基础时长，第 n 次重试等待约 BackoffFactor * 2^n
	// （可选，默认值：conf.DefaultBackoffFactor）。
	BackoffFactor time.Duration `validate:"gte=0"`

	// Backoff 自定义重试退避策略（可选，默认根据 BackoffFactor 计算）。
	Backoff backoff.Backoff `validate:"-"`

	// RetryStatusCodes 是需要重试的 HTTP 状态码（可选，默认值：conf.DefaultRetryStatusCodes()）。
	RetryStatusCodes []int `validate:"dive,gte=100,lte=599"`

	// HTTPClient 自定义 HTTP 客户端（可选，默认使用 client.NewHTTPClient(Timeout)）。
	HTTPClient *http.Client `validate:"-"`

	// Logger 自定义 logger（可选，默认使用 SDK 的全局 logger）。
	Logger *zap.Logger `validate:"-"`

	// CredentialsProvider 自定义鉴权信息来源（可选）。
	CredentialsProvider credentials.CredentialsProvider `validate:"-"`
}

// Client 是 Root'n'Roll API 的客户端，创建后可以被多个 goroutine 并发使用。
type Client struct {
	config Config
	client clientv2.Client
}

// NewClient 创建一个新的客户端。
func NewClient(config *Config) (*Client, error) {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	if err := resolveConfig(&cfg); err != nil {
		return nil, err
	}
	if err := defaultValidator.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("rootnroll: invalid config: %w", err)
	}

	provider, err := credentialsProvider(&cfg)
	if err != nil {
		return nil, err
	}
	if _, err = provider.Get(context.Background()); err != nil {
		return nil, fmt.Errorf("rootnroll: load credentials: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = client.NewHTTPClient(cfg.Timeout)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Logger()
	}

	interceptors := []clientv2.Interceptor{
		clientv2.NewAuthInterceptor(clientv2.AuthConfig{
			Credentials: provider,
			SignError: func(req *http.Request, err error) {
				logger.Warn("Failed to sign API request", zap.String("url", req.URL.String()), zap.Error(err))
			},
		}),
		clientv2.NewLogInterceptor(logger, cfg.Timeout),
	}
	if cfg.MaxRetries > 0 {
		retryBackoff := cfg.Backoff
		if retryBackoff == nil {
			retryBackoff = newRetryBackoff(cfg.BackoffFactor)
		}
		interceptors = append(interceptors, clientv2.NewRetryInterceptor(clientv2.RetryConfig{
			RetryMax: cfg.MaxRetries,
			Backoff:  retryBackoff,
			Retrier:  retrier.NewIdempotentRetrier(retrier.NewStatusCodeRetrier(cfg.RetryStatusCodes...)),
		}))
	}

	return &Client{
		config: cfg,
		client: clientv2.NewClient(httpClient, interceptors...),
	}, nil
}

// resolveConfig 为未设置的字段依次使用环境变量、配置文件和默认值。
func resolveConfig(cfg *Config) error {
	if cfg.APIURL == "" {
		cfg.APIURL = env.APIURLFromEnvironment()
	}
	if cfg.APIURL == "" {
		apiURL, err := configfile.APIURLFromConfigFile()
		if err != nil {
			return fmt.Errorf("rootnroll: load config file: %w", err)
		}
		cfg.APIURL = apiURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = conf.DefaultAPIURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.Timeout == 0 {
		if timeout, ok := env.TimeoutFromEnvironment(); ok {
			cfg.Timeout = timeout
		}
	}
	if cfg.Timeout == 0 {
		timeout, err := configfile.TimeoutFromConfigFile()
		if err != nil {
			return fmt.Errorf("rootnroll: load config file: %w", err)
		}
		cfg.Timeout = timeout
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = conf.DefaultTimeout
	}

	if cfg.MaxRetries == 0 {
		if maxRetries, ok := env.MaxRetriesFromEnvironment(); ok {
			cfg.MaxRetries = maxRetries
		} else {
			maxRetries, ok, err := configfile.MaxRetriesFromConfigFile()
			if err != nil {
				return fmt.Errorf("rootnroll: load config file: %w", err)
			}
			if ok {
				cfg.MaxRetries = maxRetries
			} else {
				cfg.MaxRetries = conf.DefaultMaxRetries
			}
		}
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = conf.DefaultBackoffFactor
	}
	if cfg.RetryStatusCodes == nil {
		cfg.RetryStatusCodes = conf.DefaultRetryStatusCodes()
	}
	return nil
}

func credentialsProvider(cfg *Config) (credentials.CredentialsProvider, error) {
	if cfg.Username != "" || cfg.Password != "" {
		cred := credentials.NewCredentials(cfg.Username, cfg.Password)
		if err := defaultValidator.Validate(cred); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingCredentials, err)
		}
		return cred, nil
	}
	if cfg.CredentialsProvider != nil {
		return cfg.CredentialsProvider, nil
	}
	return credentials.Default(), nil
}

// newRetryBackoff 指数退避，叠加 [1, 1.5) 倍的随机抖动，上限为 conf.DefaultMaxBackoff。
func newRetryBackoff(factor time.Duration) backoff.Backoff {
	return backoff.NewLimitedBackoff(
		backoff.NewRandomizedBackoff(backoff.NewExponentialBackoff(factor, 2), rational.New(1, 1), rational.New(3, 2)),
		0, conf.DefaultMaxBackoff,
	)
}

// SetLogger 设置 SDK 的全局 logger，未设置 Config.Logger 的客户端都会使用它，传入 nil 表示关闭日志。
// 未调用时，只有设置了 ROOTNROLL_DEBUG=true 才会输出日志。
func SetLogger(logger *zap.Logger) {
	log.SetLogger(logger)
}

// APIURL 返回客户端使用的 API 服务地址。
func (c *Client) APIURL() string {
	return c.config.APIURL
}

// buildURL 用转义后的 args 依次替换 path 中的 {0}、{1} 等占位符，并附加 query。
func (c *Client) buildURL(path string, query url.Values, args ...interface{}) string {
	if len(args) > 0 {
		oldnew := make([]string, 0, len(args)*2)
		for i, arg := range args {
			oldnew = append(oldnew, "{"+strconv.Itoa(i)+"}", url.PathEscape(fmt.Sprint(arg)))
		}
		path = strings.NewReplacer(oldnew...).Replace(path)
	}
	u := c.config.APIURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// request 发送请求，非 2xx 响应返回 *APIError，2xx 响应的 JSON body 解析到 ret。
func (c *Client) request(ctx context.Context, method, u string, body, ret interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	params := clientv2.RequestParams{
		Context: client.WithDialTimeout(ctx, c.config.Timeout),
		Method:  method,
		Url:     u,
	}
	if body != nil {
		getBody, err := clientv2.GetJsonRequestBody(body)
		if err != nil {
			return err
		}
		params.GetBody = getBody
	}
	return clientv2.DoAndDecodeJsonResponse(c.client, params, ret)
}

// result 与 request 相同，但 404 响应返回 found = false 而不是错误。
func (c *Client) result(ctx context.Context, method, u string, body, ret interface{}) (found bool, err error) {
	err = c.request(ctx, method, u, body, ret)
	if isNotFoundError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
