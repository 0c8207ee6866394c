package rootnroll

import (
	"context"
	"fmt"
	"time"

	"github.com/rootnroll/go-sdk/internal/clientv2"
)

const (
	// DefaultCheckerJobPollInterval 等待检查任务的默认轮询间隔。
	DefaultCheckerJobPollInterval = 500 * time.Millisecond
	// DefaultCheckerJobWaitTimeout 等待检查任务的默认超时时间。
	DefaultCheckerJobWaitTimeout = 60 * time.Second
)

// CreateCheckerJob 针对服务器运行测试场景 testScenario。
func (c *Client) CreateCheckerJob(ctx context.Context, serverID ID, testScenario string) (*CheckerJob, error) {
	req := createCheckerJobRequest{Server: serverID, TestScenario: testScenario}
	if err := defaultValidator.Validate(&req); err != nil {
		return nil, fmt.Errorf("create checker job: %w", err)
	}

	var job CheckerJob
	found, err := c.result(ctx, clientv2.RequestMethodPost, c.buildURL("/checker-jobs", nil), &req, &job)
	if err != nil {
		return nil, fmt.Errorf("create checker job for server %s: %w", serverID, err)
	}
	if !found {
		return nil, nil
	}
	return &job, nil
}

// GetCheckerJob 获取检查任务，任务不存在时返回 nil, nil。
func (c *Client) GetCheckerJob(ctx context.Context, id ID) (*CheckerJob, error) {
	var job CheckerJob
	found, err := c.result(ctx, clientv2.RequestMethodGet, c.buildURL("/checker-jobs/{0}", nil, id), nil, &job)
	if err != nil {
		return nil, fmt.Errorf("get checker job %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &job, nil
}

// WaitCheckerJobReady 轮询 GetCheckerJob 直到任务状态为 completed 或 failed。
// 默认轮询间隔为 500 毫秒，超时时间为 60 秒。
func (c *Client) WaitCheckerJobReady(ctx context.Context, id ID, opts ...PollOption) (*CheckerJob, error) {
	o := defaultPollOpts(DefaultCheckerJobPollInterval, DefaultCheckerJobWaitTimeout, opts)

	return pollLoop(ctx, o, "checker job", id, func(ctx context.Context) (pollResult[*CheckerJob], error) {
		job, err := c.GetCheckerJob(ctx, id)
		if err != nil {
			return pollResult[*CheckerJob]{}, err
		}
		if job == nil {
			return pollResult[*CheckerJob]{}, fmt.Errorf("checker job %s: %w", id, ErrNotFound)
		}
		if job.Status.IsReady() {
			return pollResult[*CheckerJob]{done: true, value: job}, nil
		}
		return pollResult[*CheckerJob]{status: string(job.Status)}, nil
	})
}
