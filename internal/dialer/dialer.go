// Package dialer 依次错峰连接同一域名解析出的多个 IP，返回最先建立的连接。
package dialer

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

type (
	DialOptions struct {
		Timeout   time.Duration
		KeepAlive time.Duration
	}

	eitherConnOrError struct {
		conn net.Conn
		err  error
	}

	dialerErrs struct {
		errs []error
	}
)

var errNoIP = errors.New("no ip could be dialed")

// DialContext 先连接 ips[0]，之后每隔 Timeout/len(ips) 再发起下一个 IP 的连接，
// 任意一个成功即返回，其余连接会被取消
func DialContext(ctx context.Context, network string, ips []net.IP, port string, dialOptions DialOptions) (net.Conn, error) {
	if len(ips) == 0 {
		return nil, errNoIP
	}

	var wg sync.WaitGroup
	resultsChan := make(chan eitherConnOrError, len(ips))
	cancels := make([]context.CancelFunc, 0, len(ips))
	errs := &dialerErrs{errs: make([]error, 0, len(ips))}
	interval := dialOptions.Timeout / time.Duration(len(ips))
	if interval <= 0 {
		interval = time.Millisecond
	}

	var winner net.Conn
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
		wg.Wait()
		close(resultsChan)
		// 晚到的成功连接需要关闭
		for result := range resultsChan {
			if result.conn != nil && result.conn != winner {
				result.conn.Close()
			}
		}
	}()

	pending := 0
	dialNext := func() {
		ip := ips[0]
		ips = ips[1:]
		newCtx, newCancel := context.WithCancel(ctx)
		cancels = append(cancels, newCancel)
		options := DialOptions{
			Timeout:   dialOptions.Timeout - interval*time.Duration(len(cancels)-1),
			KeepAlive: dialOptions.KeepAlive,
		}
		wg.Add(1)
		pending++
		dialContextAsync(newCtx, &wg, network, ip, port, options, resultsChan)
	}
	dialNext()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if len(ips) > 0 {
				dialNext()
			} else if pending == 0 {
				return nil, errs
			}
		case connOrErr := <-resultsChan:
			pending--
			if connOrErr.err != nil {
				errs.errs = append(errs.errs, connOrErr.err)
				if len(ips) > 0 {
					dialNext()
				} else if pending == 0 {
					return nil, errs
				}
			} else if connOrErr.conn != nil {
				winner = connOrErr.conn
				return winner, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func dialContextSync(ctx context.Context, network string, ip net.IP, port string, dialOptions DialOptions) (net.Conn, error) {
	dialer := net.Dialer{Timeout: dialOptions.Timeout, KeepAlive: dialOptions.KeepAlive}
	newAddr := ip.String()
	if port != "" {
		newAddr = net.JoinHostPort(newAddr, port)
	}
	return dialer.DialContext(ctx, network, newAddr)
}

func dialContextAsync(ctx context.Context, wg *sync.WaitGroup, network string, ip net.IP, port string, dialOptions DialOptions, c chan<- eitherConnOrError) {
	go func() {
		defer wg.Done()
		conn, err := dialContextSync(ctx, network, ip, port, dialOptions)
		if err != nil {
			c <- eitherConnOrError{err: err}
		} else {
			c <- eitherConnOrError{conn: conn}
		}
	}()
}

func (e *dialerErrs) Error() string {
	if len(e.errs) > 0 {
		return e.errs[0].Error()
	}
	return context.DeadlineExceeded.Error()
}

func (e *dialerErrs) Unwrap() error {
	if len(e.errs) > 0 {
		return e.errs[0]
	}
	return context.DeadlineExceeded
}

func (e *dialerErrs) Timeout() bool {
	if len(e.errs) > 0 {
		if te, ok := e.errs[0].(interface{ Timeout() bool }); ok {
			return te.Timeout()
		}
		return false
	}
	return true
}
