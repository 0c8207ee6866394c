package rootnroll

import (
	"context"
	"fmt"

	"github.com/rootnroll/go-sdk/internal/clientv2"
)

// CreateTerminal 为服务器创建终端，服务器需处于 ACTIVE 状态。
func (c *Client) CreateTerminal(ctx context.Context, serverID ID) (*Terminal, error) {
	req := createTerminalRequest{ServerID: serverID}
	if err := defaultValidator.Validate(&req); err != nil {
		return nil, fmt.Errorf("create terminal: %w", err)
	}

	var terminal Terminal
	found, err := c.result(ctx, clientv2.RequestMethodPost, c.buildURL("/terminals", nil), &req, &terminal)
	if err != nil {
		return nil, fmt.Errorf("create terminal for server %s: %w", serverID, err)
	}
	if !found {
		return nil, nil
	}
	return &terminal, nil
}

// GetTerminal 获取终端信息，终端不存在时返回 nil, nil。
func (c *Client) GetTerminal(ctx context.Context, id ID) (*Terminal, error) {
	var terminal Terminal
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/terminals/{0}", nil, id), nil, &terminal)
	if err != nil {
		return nil, fmt.Errorf("get terminal %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &terminal, nil
}

// DestroyTerminal 销毁终端。
func (c *Client) DestroyTerminal(ctx context.Context, id ID) error {
	if err := c.request(ctx, clientv2.RequestMethodDelete, c.buildURL("/terminals/{0}", nil, id), nil, nil); err != nil {
		return fmt.Errorf("destroy terminal %s: %w", id, err)
	}
	return nil
}
