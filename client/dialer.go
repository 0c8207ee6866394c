package client

import (
	"context"
	"net"
	"time"

	"github.com/rootnroll/go-sdk/internal/dialer"
)

type (
	dialTimeoutContextKey       struct{}
	keepAliveIntervalContextKey struct{}
)

// defaultDialFunc 解析域名后错峰连接所有 IP，address 本身是 IP 时直接连接
func defaultDialFunc(ctx context.Context, network string, address string) (net.Conn, error) {
	dialTimeout, ok := ctx.Value(dialTimeoutContextKey{}).(time.Duration)
	if !ok {
		dialTimeout = 30 * time.Second
	}
	keepAliveInterval, ok := ctx.Value(keepAliveIntervalContextKey{}).(time.Duration)
	if !ok {
		keepAliveInterval = 15 * time.Second
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			ips = append(ips, addr.IP)
		}
	}
	return dialer.DialContext(ctx, network, ips, port, dialer.DialOptions{Timeout: dialTimeout, KeepAlive: keepAliveInterval})
}

// WithDialTimeout 设置建立连接的超时时长
func WithDialTimeout(ctx context.Context, timeout time.Duration) context.Context {
	return context.WithValue(ctx, dialTimeoutContextKey{}, timeout)
}

// WithKeepAliveInterval 设置 TCP keep-alive 间隔
func WithKeepAliveInterval(ctx context.Context, interval time.Duration) context.Context {
	return context.WithValue(ctx, keepAliveIntervalContextKey{}, interval)
}
