package credentials

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rootnroll/go-sdk/internal/configfile"
	"github.com/rootnroll/go-sdk/internal/env"
)

// ErrMissingCredentials 没有找到可用的用户名和密码
var ErrMissingCredentials = errors.New("rootnroll: username and password are not set")

// Credentials Root'n'Roll API 的 HTTP Basic 鉴权信息
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// NewCredentials 构建一个 Credentials 对象
func NewCredentials(username, password string) *Credentials {
	return &Credentials{Username: username, Password: password}
}

// AddToken 为请求添加 Authorization 头
func (c *Credentials) AddToken(req *http.Request) error {
	if c == nil || c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	req.SetBasicAuth(c.Username, c.Password)
	return nil
}

// Get 实现 CredentialsProvider
func (c *Credentials) Get(context.Context) (*Credentials, error) {
	if c == nil || c.Username == "" || c.Password == "" {
		return nil, ErrMissingCredentials
	}
	return c, nil
}

// CredentialsProvider 获取 Credentials 对象的接口
type CredentialsProvider interface {
	Get(context.Context) (*Credentials, error)
}

var _ CredentialsProvider = (*Credentials)(nil)

// EnvironmentVariableCredentialProvider 从环境变量 ROOTNROLL_USERNAME / ROOTNROLL_PASSWORD 中获取 Credentials
type EnvironmentVariableCredentialProvider struct{}

func (provider *EnvironmentVariableCredentialProvider) Get(ctx context.Context) (*Credentials, error) {
	username, password := env.CredentialsFromEnvironment()
	if username == "" || password == "" {
		return nil, errors.New("ROOTNROLL_USERNAME or ROOTNROLL_PASSWORD is not set")
	}
	return NewCredentials(username, password), nil
}

var _ CredentialsProvider = (*EnvironmentVariableCredentialProvider)(nil)

// ConfigFileCredentialProvider 从配置文件当前 profile 中获取 Credentials
type ConfigFileCredentialProvider struct{}

func (provider *ConfigFileCredentialProvider) Get(ctx context.Context) (*Credentials, error) {
	username, password, err := configfile.CredentialsFromConfigFile()
	if err != nil {
		return nil, err
	}
	if username == "" || password == "" {
		return nil, errors.New("username or password is not set in config file")
	}
	return NewCredentials(username, password), nil
}

var _ CredentialsProvider = (*ConfigFileCredentialProvider)(nil)

// ChainedCredentialsProvider 存储多个 CredentialsProvider，逐个尝试直到成功获取第一个 Credentials 为止
type ChainedCredentialsProvider struct {
	providers []CredentialsProvider
}

func NewChainedCredentialsProvider(providers ...CredentialsProvider) *ChainedCredentialsProvider {
	return &ChainedCredentialsProvider{providers: providers}
}

func (provider *ChainedCredentialsProvider) Get(ctx context.Context) (credential *Credentials, err error) {
	for _, provider := range provider.providers {
		if credential, err = provider.Get(ctx); err == nil {
			return
		}
	}
	if err == nil {
		err = ErrMissingCredentials
	}
	return nil, errors.Join(ErrMissingCredentials, err)
}

var _ CredentialsProvider = (*ChainedCredentialsProvider)(nil)

// CachedCredentialsProvider 缓存底层 provider 首次成功返回的 Credentials，并发请求只触发一次加载
type CachedCredentialsProvider struct {
	provider    CredentialsProvider
	group       singleflight.Group
	lock        sync.RWMutex
	credentials *Credentials
}

func NewCachedCredentialsProvider(provider CredentialsProvider) *CachedCredentialsProvider {
	return &CachedCredentialsProvider{provider: provider}
}

func (provider *CachedCredentialsProvider) Get(ctx context.Context) (*Credentials, error) {
	provider.lock.RLock()
	cached := provider.credentials
	provider.lock.RUnlock()
	if cached != nil {
		return cached, nil
	}

	v, err, _ := provider.group.Do("credentials", func() (interface{}, error) {
		credentials, err := provider.provider.Get(ctx)
		if err != nil {
			return nil, err
		}
		provider.lock.Lock()
		provider.credentials = credentials
		provider.lock.Unlock()
		return credentials, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Credentials), nil
}

var _ CredentialsProvider = (*CachedCredentialsProvider)(nil)

var defaultProvider = NewCachedCredentialsProvider(NewChainedCredentialsProvider(
	&EnvironmentVariableCredentialProvider{},
	&ConfigFileCredentialProvider{},
))

// Default 返回默认的 CredentialsProvider：依次读取环境变量和配置文件，结果会被缓存
func Default() CredentialsProvider {
	return defaultProvider
}
