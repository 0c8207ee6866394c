package rootnroll

import (
	"context"
	"fmt"
	"time"

	"github.com/rootnroll/go-sdk/internal/clientv2"
)

const (
	// DefaultSandboxPollInterval 等待沙箱结束的默认轮询间隔。
	DefaultSandboxPollInterval = 500 * time.Millisecond
	// DefaultSandboxWaitTimeout 等待沙箱结束的默认超时时间。
	DefaultSandboxWaitTimeout = 60 * time.Second
)

// CreateSandbox 创建沙箱并开始执行。
func (c *Client) CreateSandbox(ctx context.Context, params CreateSandboxParams) (*Sandbox, error) {
	if err := defaultValidator.Validate(&params); err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	req := params.toRequest()

	var sandbox Sandbox
	found, err := c.result(ctx, clientv2.RequestMethodPost, c.buildURL("/sandboxes", nil), &req, &sandbox)
	if err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &sandbox, nil
}

// GetSandbox 获取沙箱信息，沙箱不存在时返回 nil, nil。
func (c *Client) GetSandbox(ctx context.Context, id ID) (*Sandbox, error) {
	var sandbox Sandbox
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/sandboxes/{0}", nil, id), nil, &sandbox)
	if err != nil {
		return nil, fmt.Errorf("get sandbox %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &sandbox, nil
}

// WaitSandboxTerminated 轮询 GetSandbox 直到沙箱结束运行或执行超时。
// 默认轮询间隔为 500 毫秒，超时时间为 60 秒。
func (c *Client) WaitSandboxTerminated(ctx context.Context, id ID, opts ...PollOption) (*Sandbox, error) {
	o := defaultPollOpts(DefaultSandboxPollInterval, DefaultSandboxWaitTimeout, opts)

	return pollLoop(ctx, o, "sandbox", id, func(ctx context.Context) (pollResult[*Sandbox], error) {
		sandbox, err := c.GetSandbox(ctx, id)
		if err != nil {
			return pollResult[*Sandbox]{}, err
		}
		if sandbox == nil {
			return pollResult[*Sandbox]{}, fmt.Errorf("sandbox %s: %w", id, ErrNotFound)
		}
		if sandbox.IsTerminated() {
			return pollResult[*Sandbox]{done: true, value: sandbox}, nil
		}
		return pollResult[*Sandbox]{status: string(sandbox.Status)}, nil
	})
}

// RunSandbox 创建沙箱并等待其结束，返回包含输出的沙箱信息。
func (c *Client) RunSandbox(ctx context.Context, params CreateSandboxParams, opts ...PollOption) (*Sandbox, error) {
	sandbox, err := c.CreateSandbox(ctx, params)
	if err != nil {
		return nil, err
	}
	if sandbox == nil {
		return nil, fmt.Errorf("create sandbox: %w", ErrNotFound)
	}
	if sandbox.IsTerminated() {
		return sandbox, nil
	}
	return c.WaitSandboxTerminated(ctx, sandbox.ID, opts...)
}
