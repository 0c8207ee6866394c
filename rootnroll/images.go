package rootnroll

import (
	"context"
	"fmt"

	"github.com/rootnroll/go-sdk/internal/clientv2"
)

// GetImage 获取镜像信息，镜像不存在时返回 nil, nil。
func (c *Client) GetImage(ctx context.Context, id ID) (*Image, error) {
	var image Image
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/images/{0}", nil, id), nil, &image)
	if err != nil {
		return nil, fmt.Errorf("get image %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &image, nil
}
