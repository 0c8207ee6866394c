package rootnroll

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/rootnroll/go-sdk/internal/clientv2"
)

const (
	// DefaultServerPollInterval 等待服务器状态的默认轮询间隔。
	DefaultServerPollInterval = time.Second
	// DefaultServerWaitTimeout 等待服务器状态的默认超时时间。
	DefaultServerWaitTimeout = 180 * time.Second
)

// CreateServer 使用指定镜像创建服务器，Memory 为 0 时使用 DefaultServerMemory。
func (c *Client) CreateServer(ctx context.Context, params CreateServerParams) (*Server, error) {
	if err := defaultValidator.Validate(&params); err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	if params.Memory == 0 {
		params.Memory = DefaultServerMemory
	}

	var server Server
	found, err := c.result(ctx, clientv2.RequestMethodPost, c.buildURL("/servers", nil), &params, &server)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &server, nil
}

// GetServer 获取服务器信息，服务器不存在时返回 nil, nil。
func (c *Client) GetServer(ctx context.Context, id ID) (*Server, error) {
	var server Server
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/servers/{0}", nil, id), nil, &server)
	if err != nil {
		return nil, fmt.Errorf("get server %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &server, nil
}

// ListServers 分页列出服务器，page 从 1 开始，小于 1 时视为 1。
// 页码超出范围时返回 nil, nil。
func (c *Client) ListServers(ctx context.Context, page int) (*ServerPage, error) {
	if page < 1 {
		page = 1
	}
	query := url.Values{"page": []string{strconv.Itoa(page)}}

	var servers ServerPage
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/servers", query), nil, &servers)
	if err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &servers, nil
}

// DestroyServer 销毁服务器，服务器不存在时同样返回错误（可用 IsNotFound 判断）。
func (c *Client) DestroyServer(ctx context.Context, id ID) error {
	if err := c.request(ctx, clientv2.RequestMethodDelete, c.buildURL("/servers/{0}", nil, id), nil, nil); err != nil {
		return fmt.Errorf("destroy server %s: %w", id, err)
	}
	return nil
}

// WaitServerStatus 轮询 GetServer 直到服务器状态变为 status。
// 服务器进入 ERROR 状态时返回 ErrServerFailed，服务器消失时返回 ErrNotFound，
// 超时返回 *WaitTimeoutError。
// 默认轮询间隔为 1 秒，超时时间为 180 秒。
func (c *Client) WaitServerStatus(ctx context.Context, id ID, status ServerStatus, opts ...PollOption) (*Server, error) {
	o := defaultPollOpts(DefaultServerPollInterval, DefaultServerWaitTimeout, opts)

	return pollLoop(ctx, o, "server", id, func(ctx context.Context) (pollResult[*Server], error) {
		server, err := c.GetServer(ctx, id)
		if err != nil {
			return pollResult[*Server]{}, err
		}
		if server == nil {
			return pollResult[*Server]{}, fmt.Errorf("server %s: %w", id, ErrNotFound)
		}
		if server.Status == status {
			return pollResult[*Server]{done: true, value: server}, nil
		}
		if server.Status == ServerStatusError {
			return pollResult[*Server]{}, fmt.Errorf("server %s: %w", id, ErrServerFailed)
		}
		return pollResult[*Server]{status: string(server.Status)}, nil
	})
}

// CreateServerAndWait 创建服务器并等待其进入 ACTIVE 状态。
// 等待失败时仍然返回已创建的服务器，调用方可以据此销毁它。
func (c *Client) CreateServerAndWait(ctx context.Context, params CreateServerParams, opts ...PollOption) (*Server, error) {
	server, err := c.CreateServer(ctx, params)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, fmt.Errorf("create server: %w", ErrNotFound)
	}
	active, err := c.WaitServerStatus(ctx, server.ID, ServerStatusActive, opts...)
	if err != nil {
		return server, err
	}
	return active, nil
}
